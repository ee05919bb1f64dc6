package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/wippyai/pdfium-bridge/bridge"
	"github.com/wippyai/pdfium-bridge/config"
	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/formfill"
)

// session is one loaded document on one bridge.
type session struct {
	logger *zap.Logger
	bridge *bridge.Bridge
	doc    bridge.Document
	info   bridge.FormInfo
	env    bridge.FormEnv
	input  string
	output string
}

type saveResult struct {
	path   string
	size   int
	digest string
}

func openSession(ctx context.Context, cfg *config.Config, logger *zap.Logger, input, output, password string) (*session, error) {
	wasm, err := os.ReadFile(cfg.Engine.WasmPath)
	if err != nil {
		return nil, fmt.Errorf("read engine: %w", err)
	}

	engine.SetLogger(logger.Named("engine"))
	eng, err := engine.NewWazeroEngine(ctx, wasm, cfg.EngineConfig())
	if err != nil {
		return nil, err
	}
	b, err := bridge.New(ctx, eng,
		bridge.WithLogger(logger.Named("bridge")),
		bridge.WithMemoryLimit(int(cfg.Sink.MaxTotalBytes)),
		bridge.WithSinkCapacity(cfg.Sink.InitialCapacity),
		bridge.WithFormVersion(cfg.FormVersion()),
	)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		b.Close(ctx)
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := b.LoadDocument(ctx, data, password)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}

	return &session{
		logger: logger,
		bridge: b,
		doc:    doc,
		input:  input,
		output: output,
	}, nil
}

func (s *session) formBound() bool { return !s.env.IsZero() }

// bindForm binds a form environment and cycles the first page through it
// so pending form state is applied before a save.
func (s *session) bindForm(ctx context.Context) error {
	if s.formBound() {
		return nil
	}
	info, err := s.bridge.OpenFormFillInfo(formfill.WithCallbacks(loggingCallbacks(s.logger.Named("form"))))
	if err != nil {
		return err
	}
	env, err := s.bridge.InitFormFillEnvironment(ctx, s.doc, info)
	if err != nil {
		s.bridge.CloseFormFillInfo(info)
		return err
	}
	s.info, s.env = info, env

	n, err := s.bridge.PageCount(ctx, s.doc)
	if err != nil || n == 0 {
		return err
	}
	page, err := s.bridge.OpenFormPage(ctx, env, 0)
	if err != nil {
		return err
	}
	return s.bridge.CloseFormPage(ctx, page)
}

func (s *session) exitForm(ctx context.Context) error {
	if !s.formBound() {
		return nil
	}
	err := s.bridge.ExitFormFillEnvironment(ctx, s.env)
	if cerr := s.bridge.CloseFormFillInfo(s.info); err == nil {
		err = cerr
	}
	s.info, s.env = 0, 0
	return err
}

// save serializes the document into a fresh sink and writes the sink to
// the output path.
func (s *session) save(ctx context.Context) (saveResult, error) {
	sk, err := s.bridge.OpenSink()
	if err != nil {
		return saveResult{}, err
	}
	defer s.bridge.CloseSink(sk)

	if err := s.bridge.SaveAsCopy(ctx, s.doc, sk); err != nil {
		return saveResult{}, err
	}
	data, err := s.bridge.SinkBytes(sk)
	if err != nil {
		return saveResult{}, err
	}
	if err := os.WriteFile(s.output, data, 0o644); err != nil {
		return saveResult{}, fmt.Errorf("write output: %w", err)
	}

	sum := blake2b.Sum256(data)
	return saveResult{
		path:   s.output,
		size:   len(data),
		digest: hex.EncodeToString(sum[:]),
	}, nil
}

func (s *session) close(ctx context.Context) error {
	return s.bridge.Close(ctx)
}

func (r saveResult) String() string {
	return fmt.Sprintf("%s: %d bytes, blake2b-256 %s", r.path, r.size, r.digest)
}

func loggingCallbacks(l *zap.Logger) formfill.Callbacks {
	return formfill.Callbacks{
		Invalidate: func(page int, r engine.Rect) {
			l.Info("invalidate", zap.Int("page", page), zap.Float64s("rect", []float64{r.Left, r.Top, r.Right, r.Bottom}))
		},
		OutputSelectedRect: func(page int, r engine.Rect) {
			l.Info("selected rect", zap.Int("page", page), zap.Float64s("rect", []float64{r.Left, r.Top, r.Right, r.Bottom}))
		},
		SetCursor: func(c engine.Cursor) {
			l.Debug("set cursor", zap.Stringer("cursor", c))
		},
		OnChange: func() {
			l.Info("form changed")
		},
		ExecuteNamedAction: func(name string) {
			l.Info("named action", zap.String("name", name))
		},
		DoURIAction: func(uri string) {
			l.Info("uri action", zap.String("uri", uri))
		},
		DoGoToAction: func(page int, zoom engine.ZoomMode) {
			l.Info("goto action", zap.Int("page", page), zap.Stringer("zoom", zoom))
		},
		SetTextFieldFocus: func(value string, focused bool) {
			l.Debug("text field focus", zap.String("value", value), zap.Bool("focused", focused))
		},
	}
}
