package legacy

import (
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ptk-tools/scripteditor/ptkerr"
)

func shiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		t.Fatalf("encoding fixture to Shift_JIS: %v", err)
	}
	return b
}

func TestTranscodeRewritesLegacyCalls(t *testing.T) {
	input := shiftJIS(t, "PSD:addstate(\"a\")\r\nrequire(\"PSDToolKit\").Blinker.new({})\r\n")
	want := "require(\"PSDToolKit\").add_state_legacy(\"a\")\r\nrequire(\"PSDToolKit.Blinker\").new_legacy({})\r\n"

	got, err := Transcode(input)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("Transcode() = %q, want %q", got, want)
	}
}

func TestTranscodeRejectsNonLegacyInput(t *testing.T) {
	input := shiftJIS(t, "require(\"PSDToolKit\").Blinker.new({})\r\n")
	_, err := Transcode(input)
	if err == nil {
		t.Fatal("expected not_legacy_script error")
	}
	if !ptkerr.Is(err, ptkerr.KindNotLegacyScript) {
		t.Fatalf("error kind = %v, want %v", err, ptkerr.KindNotLegacyScript)
	}
}

func TestTranscodeIsNotIdempotentOnConvertedOutput(t *testing.T) {
	input := shiftJIS(t, "PSD:addstate(\"a\")\r\n")
	first, err := Transcode(input)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Transcode(first); err == nil {
		t.Fatal("re-transcoding already-converted output should fail: sentinel was removed")
	}
}

func TestTranscodeEmptyInput(t *testing.T) {
	got, err := Transcode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("Transcode(nil) = %q, want empty", got)
	}
}
