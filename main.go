/*
Copyright (C) 2024  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
/*
	ptk-scripteditor: an interactive shell over the script document model,
	two-tier image cache, and legacy transcoder cores.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	units "github.com/docker/go-units"

	"github.com/ptk-tools/scripteditor/cache"
	"github.com/ptk-tools/scripteditor/doc"
	"github.com/ptk-tools/scripteditor/legacy"
	"github.com/ptk-tools/scripteditor/ptkcfg"
	"github.com/ptk-tools/scripteditor/textcodec"
	"github.com/ptk-tools/scripteditor/watch"
)

const newprompt = "\033[32m>\033[0m "
const resultprompt = "\033[31m=\033[0m "

// shell bundles the live Doc, Selection and Cache a single editing
// session operates on. watcher/path track the last-loaded script file so
// external edits can be flagged.
type shell struct {
	d   *doc.Doc
	sel *doc.Selection
	c   *cache.Cache

	watcher *watch.Watcher
	path    string
}

func main() {
	fmt.Print(`ptk-scripteditor Copyright (C) 2024  Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;
`)
	ptkcfg.InitSettings()

	c, err := cache.Create()
	if err != nil {
		fmt.Println("fatal: could not create image cache:", err)
		os.Exit(1)
	}
	defer c.Destroy()

	s := &shell{d: doc.New(), sel: doc.NewSelection(), c: c}
	s.d.Log().SetCallback(func(n doc.Notification) {
		fmt.Printf("%snotify %s\n", resultprompt, n.Type)
	})

	repl(s)
}

func repl(s *shell) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".ptk-scripteditor-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
				}
			}()
			out := dispatch(s, line)
			if out != "" {
				fmt.Print(resultprompt)
				fmt.Println(out)
			}
		}()
	}
}

// dispatch parses one command line and runs it against s. Commands are
// space-separated; there is no quoting support, which is enough for a
// developer console exercising the cores directly (the host UI drives
// these APIs programmatically, not through this shell).
func dispatch(s *shell, line string) string {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "exit", "quit":
		os.Exit(0)
		return ""

	case "selector-add":
		id, err := s.d.SelectorAdd(strings.Join(args, " "))
		return reportIDOrErr(id, err)

	case "item-add-value":
		selIdx := mustAtoi(args[0])
		id, err := s.d.ItemAddValue(selIdx, args[1], strings.Join(args[2:], " "))
		return reportIDOrErr(id, err)

	case "item-add-animation":
		selIdx := mustAtoi(args[0])
		id, err := s.d.ItemAddAnimation(selIdx, args[1], args[2])
		return reportIDOrErr(id, err)

	case "param-add":
		selIdx, itemIdx := mustAtoi(args[0]), mustAtoi(args[1])
		id, err := s.d.ParamAdd(selIdx, itemIdx, args[2], strings.Join(args[3:], " "))
		return reportIDOrErr(id, err)

	case "begin":
		s.d.BeginTransaction()
		return "ok"

	case "end":
		return reportErr(s.d.EndTransaction())

	case "undo":
		return reportErr(s.d.Undo())

	case "redo":
		return reportErr(s.d.Redo())

	case "save":
		return cmdSave(s, args[0])

	case "load":
		return cmdLoad(s, args[0])

	case "legacy":
		return cmdLegacy(args[0])

	case "cache-stat":
		st := s.c.Stat()
		return fmt.Sprintf("entries=%d memory=%s/%s file=%s/%s",
			st.EntryCount,
			units.BytesSize(float64(st.MemoryUsed)), units.BytesSize(float64(st.MemoryCap)),
			units.BytesSize(float64(st.FileUsed)), units.BytesSize(float64(st.FileCap)))

	case "stat":
		st := s.d.Stats()
		return fmt.Sprintf("selectors=%d items=%d (value=%d animation=%d) params=%d",
			st.SelectorCount, st.ItemCount, st.ValueItems, st.AnimationItems, st.ParamCount)

	default:
		return "unknown command: " + cmd
	}
}

func cmdSave(s *shell, path string) string {
	data, err := textcodec.Save(s.d)
	if err != nil {
		return "error: " + err.Error()
	}
	if s.watcher != nil && path == s.path {
		// This save is our own write to the watched file: swallow the
		// next fsnotify event it provokes instead of reporting a
		// spurious "changed on disk".
		s.watcher.SuppressNext()
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "error: " + err.Error()
	}
	return "saved " + path
}

func cmdLoad(s *shell, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "error: " + err.Error()
	}
	if err := textcodec.Load(s.d, data); err != nil {
		return "error: " + err.Error()
	}
	s.sel.Clear()
	watchPath(s, path)
	return "loaded " + path
}

// watchPath (re)starts external-edit detection on path, replacing any
// watcher left over from a previously loaded file. A failure to start the
// watcher (e.g. an unwatchable filesystem) is logged, not fatal: the
// editor still works, it just can't warn about out-of-band edits.
func watchPath(s *shell, path string) {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	w, err := watch.New(path, func() {
		fmt.Printf("%s%s changed on disk outside the editor; reload with `load %s`\n", resultprompt, path, path)
	})
	if err != nil {
		ptkcfg.Trace("watch: could not watch %s: %v", path, err)
		return
	}
	s.watcher = w
	s.path = path
}

func cmdLegacy(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "error: " + err.Error()
	}
	out, err := legacy.Transcode(data)
	if err != nil {
		return "error: " + err.Error()
	}
	dst := path + ".utf8"
	if err := os.WriteFile(dst, out, 0644); err != nil {
		return "error: " + err.Error()
	}
	return "transcoded to " + dst
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("expected a number, got " + s)
	}
	return n
}

func reportIDOrErr(id uint32, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("id=%d", id)
}

func reportErr(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
