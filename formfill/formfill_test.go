package formfill

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/engine/enginetest"
	"github.com/wippyai/pdfium-bridge/errors"
)

func setup(t *testing.T, data []byte) (*enginetest.Fake, engine.DocumentID) {
	t.Helper()
	ctx := context.Background()
	fake := enginetest.NewFake()
	if err := fake.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	doc, err := fake.LoadDocument(ctx, data, "")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	return fake, doc
}

func TestNewInfo_Defaults(t *testing.T) {
	info, err := NewInfo()
	if err != nil {
		t.Fatalf("NewInfo: %v", err)
	}
	if info.Version() != Version1 {
		t.Errorf("Version = %d, want 1", info.Version())
	}
	if info.State() != InfoOpen || info.Bound() {
		t.Errorf("State = %s", info.State())
	}

	// Every callback is a callable no-op.
	info.Invalidate(0, engine.Rect{})
	info.OutputSelectedRect(0, engine.Rect{})
	info.SetCursor(engine.CursorHand)
	info.OnChange()
	info.ExecuteNamedAction("NextPage")
	info.DoURIAction("https://example.com")
	info.DoGoToAction(1, engine.ZoomFit)
	info.SetTextFieldFocus("", true)
}

func TestNewInfo_Version(t *testing.T) {
	info, err := NewInfo(WithVersion(Version2))
	if err != nil || info.Version() != Version2 {
		t.Fatalf("NewInfo(v2) = %v, %v", info, err)
	}
	if _, err := NewInfo(WithVersion(3)); errors.KindOf(err) != errors.KindInvalidInput {
		t.Fatalf("NewInfo(v3) err = %v", err)
	}
}

func TestInfo_PartialCallbacks(t *testing.T) {
	changes := 0
	var focused string
	info, _ := NewInfo(WithCallbacks(Callbacks{
		OnChange:          func() { changes++ },
		SetTextFieldFocus: func(v string, f bool) { focused = v },
	}))

	info.OnChange()
	info.SetTextFieldFocus("Ada", true)
	info.SetCursor(engine.CursorVBeam)

	if changes != 1 || focused != "Ada" {
		t.Fatalf("changes=%d focused=%q", changes, focused)
	}
}

func TestBind_UnbindClose(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.FormDocument())

	info, _ := NewInfo()
	env, err := Bind(ctx, fake, doc, info)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !env.Active() || env.Document() != doc || env.Info() != info {
		t.Fatal("environment not wired to its document and info")
	}
	if info.State() != InfoBound || info.Environment() != env {
		t.Fatalf("info state = %s", info.State())
	}
	if fake.ActiveForms() != 1 {
		t.Fatalf("ActiveForms = %d", fake.ActiveForms())
	}

	if err := env.Exit(ctx); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if env.Active() || info.State() != InfoOpen || info.Environment() != nil {
		t.Fatal("Exit did not retire environment")
	}
	if fake.ActiveForms() != 0 || fake.FormExits != 1 {
		t.Fatalf("ActiveForms=%d FormExits=%d", fake.ActiveForms(), fake.FormExits)
	}

	if err := info.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if info.State() != InfoClosed {
		t.Fatalf("state = %s", info.State())
	}
}

func TestBind_Validation(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())

	closed, _ := NewInfo()
	closed.Close()

	bound, _ := NewInfo()
	if _, err := Bind(ctx, fake, doc, bound); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	initsBefore := fake.FormInits

	open, _ := NewInfo()

	tests := []struct {
		info *Info
		eng  engine.Engine
		name string
		kind errors.Kind
		doc  engine.DocumentID
	}{
		{nil, fake, "nil info", errors.KindInvalidHandle, doc},
		{closed, fake, "closed info", errors.KindInvalidHandle, doc},
		{bound, fake, "bound info", errors.KindLifecycleViolation, doc},
		{open, fake, "null document", errors.KindUnboundDocument, 0},
		{open, fake, "unloaded document", errors.KindUnboundDocument, 42},
		{open, nil, "nil engine", errors.KindInvalidInput, doc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Bind(ctx, tt.eng, tt.doc, tt.info)
			if env != nil {
				t.Fatal("expected nil environment")
			}
			if errors.KindOf(err) != tt.kind {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
		})
	}

	if fake.FormInits != initsBefore {
		t.Fatalf("failed Bind registered with engine: %d inits", fake.FormInits-initsBefore)
	}
	if open.State() != InfoOpen {
		t.Fatalf("failed Bind changed info state to %s", open.State())
	}
}

func TestBind_ClosedDocument(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())
	fake.CloseDocument(ctx, doc)

	info, _ := NewInfo()
	if _, err := Bind(ctx, fake, doc, info); !stderrors.Is(err, errors.ErrUnboundDocument) {
		t.Fatalf("Bind on closed doc err = %v", err)
	}
	if info.State() != InfoOpen {
		t.Fatalf("state = %s", info.State())
	}
}

func TestExit_Twice(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())
	info, _ := NewInfo()
	env, _ := Bind(ctx, fake, doc, info)

	env.Exit(ctx)
	if err := env.Exit(ctx); !stderrors.Is(err, errors.ErrLifecycleViolation) {
		t.Fatalf("second Exit err = %v", err)
	}
	if fake.FormExits != 1 {
		t.Fatalf("FormExits = %d", fake.FormExits)
	}
}

func TestInfo_CloseWhileBound(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())
	info, _ := NewInfo()
	env, _ := Bind(ctx, fake, doc, info)

	if err := info.Close(); !stderrors.Is(err, errors.ErrLifecycleViolation) {
		t.Fatalf("Close while bound err = %v", err)
	}
	env.Exit(ctx)
	if err := info.Close(); err != nil {
		t.Fatalf("Close after Exit: %v", err)
	}
	if err := info.Close(); !stderrors.Is(err, errors.ErrInvalidHandle) {
		t.Fatalf("second Close err = %v", err)
	}
}

func TestInfo_Rebind(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())
	info, _ := NewInfo()

	for i := 0; i < 3; i++ {
		env, err := Bind(ctx, fake, doc, info)
		if err != nil {
			t.Fatalf("Bind %d: %v", i, err)
		}
		if err := env.Exit(ctx); err != nil {
			t.Fatalf("Exit %d: %v", i, err)
		}
	}
	if fake.FormInits != 3 || fake.FormExits != 3 {
		t.Fatalf("inits=%d exits=%d", fake.FormInits, fake.FormExits)
	}
}

func TestBind_PassesVersion(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.EmptyDocument())
	info, _ := NewInfo(WithVersion(Version2))

	env, err := Bind(ctx, fake, doc, info)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if v := fake.FormVersion(env.Form()); v != 2 {
		t.Fatalf("engine saw version %d", v)
	}
}

func TestPages_Callbacks(t *testing.T) {
	ctx := context.Background()
	fake, doc := setup(t, enginetest.MultiPageDocument(2))

	var invalidated []int
	changes := 0
	info, _ := NewInfo(WithCallbacks(Callbacks{
		Invalidate: func(page int, r engine.Rect) {
			if r.Right != 612 || r.Bottom != 792 {
				t.Errorf("rect = %+v", r)
			}
			invalidated = append(invalidated, page)
		},
		OnChange: func() { changes++ },
	}))
	env, _ := Bind(ctx, fake, doc, info)

	p0, err := env.OpenPage(ctx, 0)
	if err != nil {
		t.Fatalf("OpenPage(0): %v", err)
	}
	p1, err := env.OpenPage(ctx, 1)
	if err != nil {
		t.Fatalf("OpenPage(1): %v", err)
	}
	if p1.Index() != 1 || p1.Env() != env {
		t.Fatal("page not wired")
	}
	if len(invalidated) != 2 || invalidated[0] != 0 || invalidated[1] != 1 || changes != 2 {
		t.Fatalf("invalidated=%v changes=%d", invalidated, changes)
	}

	if _, err := env.OpenPage(ctx, 5); errors.KindOf(err) != errors.KindEngine {
		t.Fatalf("OpenPage(5) err = %v", err)
	}

	if err := p0.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p0.Close(ctx); !stderrors.Is(err, errors.ErrLifecycleViolation) {
		t.Fatalf("second Close err = %v", err)
	}
	if env.OpenPages() != 1 {
		t.Fatalf("OpenPages = %d", env.OpenPages())
	}

	// Exit closes the remaining page.
	if err := env.Exit(ctx); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if !p1.Closed() || fake.OpenPages() != 0 {
		t.Fatalf("page left open: closed=%v engine pages=%d", p1.Closed(), fake.OpenPages())
	}
	if _, err := env.OpenPage(ctx, 0); !stderrors.Is(err, errors.ErrLifecycleViolation) {
		t.Fatalf("OpenPage after Exit err = %v", err)
	}
}
