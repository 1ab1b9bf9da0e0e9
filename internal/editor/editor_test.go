package editor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/input/key"
	"github.com/dshills/caretkit/internal/selection"
)

func mustLoad(t *testing.T, markup string, opts ...Option) *Editor {
	t.Helper()
	ed, err := Load(strings.NewReader(markup), opts...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(ed.Close)
	return ed
}

func press(ed *Editor, spec string) bool {
	ev, err := key.Parse(spec)
	if err != nil {
		panic(err)
	}
	return ed.HandleKey(key.NewEvent(ev.Key, ev.Rune, ev.Modifiers))
}

func TestLoadPlacesCaretAtStart(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img></p>")

	r, ok := ed.Surface().Range()
	if !ok {
		t.Fatal("Range() ok = false after Load")
	}
	text := dom.QueryFirst(ed.Surface().Root(), "p").FirstChild
	if want := dom.CollapsedAt(text, 0); r != want {
		t.Errorf("Range() = %v, want %v", r, want)
	}
	if got := ed.Snapshot().State; got != "text" {
		t.Errorf("State = %q, want text", got)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>hello</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	ed, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer ed.Close()
	if got := ed.Snapshot().HTML; got != "<p>hello</p>" {
		t.Errorf("HTML = %q, want <p>hello</p>", got)
	}

	_, err = Open(filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want fs.ErrNotExist", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "open" {
		t.Errorf("Open(missing) error = %v, want OperationError op open", err)
	}
}

func TestArrowKeysAcrossObject(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img></p>")

	steps := []struct {
		key        string
		overridden bool
		state      string
	}{
		{"Right", false, "text"},
		{"Right", true, "boundary"},
		{"Right", true, "object"},
		{"Right", true, "boundary"},
		{"Left", true, "object"},
	}
	for i, s := range steps {
		if got := press(ed, s.key); got != s.overridden {
			t.Errorf("step %d: HandleKey(%s) = %v, want %v", i, s.key, got, s.overridden)
		}
		if got := ed.Snapshot().State; got != s.state {
			t.Errorf("step %d: State = %q, want %q", i, got, s.state)
		}
	}
}

func TestTypeAtBoundary(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img></p>")
	press(ed, "Right")
	press(ed, "Right")

	ed.Type("xy")
	snap := ed.Snapshot()
	if snap.HTML != "<p>abxy<img/></p>" {
		t.Errorf("HTML = %q, want <p>abxy<img/></p>", snap.HTML)
	}
	if snap.State != "text" {
		t.Errorf("State = %q, want text", snap.State)
	}
}

func TestClickSelectsObjectAndCopies(t *testing.T) {
	ed := mustLoad(t, `<p>ab<img alt="pic"></p>`)

	if !ed.Click(3, 0.5) {
		t.Fatal("Click() on img not overridden")
	}
	if got := ed.Snapshot().State; got != "object" {
		t.Fatalf("State = %q, want object", got)
	}

	data := ed.Copy()
	want := map[string]string{
		selection.MIMEPlain:        "",
		selection.MIMEHTML:         `<img alt="pic"/>`,
		selection.MIMEInternalHTML: `<img alt="pic"/>`,
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("Copy() mismatch (-want +got):\n%s", diff)
	}
	if got := ed.Surface().Clipboard(selection.MIMEHTML); got != `<img alt="pic"/>` {
		t.Errorf("Clipboard(html) = %q", got)
	}

	ed.Cut()
	if got := ed.Snapshot().HTML; got != "<p>ab</p>" {
		t.Errorf("HTML after Cut = %q, want <p>ab</p>", got)
	}
}

func TestNativeCopyAndCut(t *testing.T) {
	ed := mustLoad(t, "<p>abc</p>")
	press(ed, "Shift+Right")
	press(ed, "Shift+Right")

	if diff := cmp.Diff(map[string]string{selection.MIMEPlain: "ab"}, ed.Copy()); diff != "" {
		t.Errorf("Copy() mismatch (-want +got):\n%s", diff)
	}
	ed.Cut()
	if got := ed.Snapshot().HTML; got != "<p>c</p>" {
		t.Errorf("HTML after Cut = %q, want <p>c</p>", got)
	}
}

func TestEnterSplitsBlock(t *testing.T) {
	ed := mustLoad(t, "<p>abcd</p>")
	if ed.Click(2, 0.5) {
		t.Error("Click() in plain text overridden")
	}
	press(ed, "Enter")
	if got := ed.Snapshot().HTML; got != "<p>ab</p><p>cd</p>" {
		t.Errorf("HTML = %q, want <p>ab</p><p>cd</p>", got)
	}
}

func TestBlurAndFocus(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img></p>")
	ed.Click(3, 0.5)

	ed.Blur()
	if got := ed.Snapshot().State; got != "text" {
		t.Errorf("State after Blur = %q, want text", got)
	}
	if ed.Surface().HasFocus() {
		t.Error("HasFocus() = true after Blur")
	}
	ed.Focus()
	if got := ed.Snapshot().State; got != "object" {
		t.Errorf("State after Focus = %q, want object", got)
	}
}

func TestTickBlinksBlockCaret(t *testing.T) {
	ed := mustLoad(t, `<p>b</p><div contenteditable="false">X</div>`)
	press(ed, "Right")
	press(ed, "Right")
	if got := ed.Snapshot().State; got != "boundary" {
		t.Fatalf("State = %q, want boundary", got)
	}

	if !ed.Tick(time.Now().Add(time.Second)) {
		t.Error("Tick() = false, want blink toggle")
	}
}

func TestClose(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img></p>")
	press(ed, "Right")
	press(ed, "Right")

	ed.Close()
	if got := ed.Snapshot().HTML; got != "<p>ab<img/></p>" {
		t.Errorf("HTML after Close = %q, want markers removed", got)
	}
	if press(ed, "Right") {
		t.Error("HandleKey() after Close = true")
	}
	if err := ed.Apply(Step{Key: "Right"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Apply() after Close error = %v, want ErrClosed", err)
	}
}

func TestParseScript(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{
			name:  "all actions",
			input: "- key: Right\n- type: hi\n- click: {x: 1, y: 0.5}\n- copy: true\n- cut: true\n- focus: true\n- blur: true\n- tick: 500ms\n",
			want:  []string{"key", "type", "click", "copy", "cut", "focus", "blur", "tick"},
		},
		{name: "empty document", input: "", want: nil},
		{name: "empty step", input: "- {}\n", wantErr: ErrEmptyStep},
		{name: "two actions", input: "- {key: Right, copy: true}\n", wantErr: ErrAmbiguousStep},
		{name: "bad key", input: "- key: Hyper+x\n", wantErr: key.ErrInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := ParseScript(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseScript() error = %v, want %v", err, tt.wantErr)
				}
				var stepErr *StepError
				if !errors.As(err, &stepErr) || stepErr.Index != 0 {
					t.Errorf("ParseScript() error = %v, want StepError at index 0", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScript() error = %v", err)
			}
			var got []string
			for _, s := range steps {
				got = append(got, s.Action())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStepValidateTick(t *testing.T) {
	err := Step{Tick: "soon"}.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid tick") {
		t.Errorf("Validate() error = %v, want invalid tick", err)
	}
}

func TestRunScript(t *testing.T) {
	ed := mustLoad(t, "<p>a</p><img><p>b</p>")
	steps, err := ParseScript(strings.NewReader("- click: {x: 1, y: 1.5}\n- key: Delete\n"))
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}

	var states []string
	err = ed.Run(steps, func(i int, s Step, snap Snapshot) {
		states = append(states, s.String()+" -> "+snap.State)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"click (1,1.5) -> object", "key Delete -> text"}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("Run() states mismatch (-want +got):\n%s", diff)
	}
	if got := ed.Snapshot().HTML; got != "<p>a</p><p>b</p>" {
		t.Errorf("HTML = %q, want <p>a</p><p>b</p>", got)
	}
}

func TestSnapshotString(t *testing.T) {
	snap := Snapshot{HTML: "<p>a</p>", State: "text", Selection: "x"}
	if got, want := snap.String(), "[text] x | <p>a</p>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSnapshotOmitsEditingMarkup(t *testing.T) {
	ed := mustLoad(t, "<p>ab<img>\u200b</p>")

	press(ed, "Right")
	press(ed, "Right")
	if got := ed.Snapshot().State; got != "boundary" {
		t.Fatalf("State = %q, want boundary", got)
	}
	if got, want := ed.Snapshot().HTML, "<p>ab<img/>\u200b</p>"; got != want {
		t.Errorf("HTML at boundary = %q, want %q", got, want)
	}

	ed.Click(3, 0.5)
	if got := ed.Snapshot().State; got != "object" {
		t.Fatalf("State = %q, want object", got)
	}
	if got, want := ed.Snapshot().HTML, "<p>ab<img/>\u200b</p>"; got != want {
		t.Errorf("HTML with object selected = %q, want %q", got, want)
	}
	if !strings.Contains(ed.Surface().HTML(), selection.ClassMirror) {
		t.Error("surface has no mirror while object selected")
	}
}
