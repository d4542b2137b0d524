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

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/ptk-tools/scripteditor/ptkcfg"
	"github.com/ptk-tools/scripteditor/ptkerr"
)

// lockFileName is the sentinel file each cache directory locks
// exclusively; its lock state is the liveness signal orphan reclamation
// probes.
const lockFileName = ".lock"

type dirLock struct {
	f *flock.Flock
}

// acquireCacheDir builds and locks "<tmp>/ptk_<pid>_<instance>". A
// pre-existing directory is fine; failure to acquire the exclusive
// handle fails construction outright.
func acquireCacheDir(instance int64) (string, dirLock, error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("ptk_%d_%d", os.Getpid(), instance))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", dirLock{}, ptkerr.OS(err, "create cache directory %s", dir)
	}
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return "", dirLock{}, ptkerr.OS(err, "lock cache directory %s", dir)
	}
	if !locked {
		return "", dirLock{}, ptkerr.New(ptkerr.KindOS, "cache directory already locked: "+dir)
	}
	return dir, dirLock{f: fl}, nil
}

func releaseCacheDir(dir string, lock dirLock) {
	if lock.f != nil {
		lock.f.Unlock()
	}
	os.Remove(filepath.Join(dir, lockFileName))
	os.Remove(dir)
}

// reclaimOrphans scans the OS temp directory for "ptk_*" subdirectories
// left behind by crashed owners and deletes the ones nobody still holds
// the exclusive handle on.
func reclaimOrphans() {
	tmp := os.TempDir()
	entries, err := os.ReadDir(tmp)
	if err != nil {
		return
	}
	for _, ent := range entries {
		if !ent.IsDir() || !strings.HasPrefix(ent.Name(), "ptk_") {
			continue
		}
		candidate := filepath.Join(tmp, ent.Name())
		probe := flock.New(filepath.Join(candidate, lockFileName))
		locked, err := probe.TryLock()
		if err != nil || !locked {
			continue // a live owner holds it, or we can't tell: skip silently
		}
		probe.Unlock()
		if err := os.RemoveAll(candidate); err != nil {
			ptkcfg.Trace("cache: failed to reclaim orphan directory %s: %v", candidate, err)
		}
	}
}
