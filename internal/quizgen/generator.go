package quizgen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/emandor/learn2play_service/internal/config"
	"github.com/emandor/learn2play_service/internal/model"
	"github.com/emandor/learn2play_service/internal/telemetry"
)

const maxLineBytes = 1 << 20

type Options struct {
	Root    string // project root; child working directory
	Python  string
	Script  string
	Output  string // hand-off file written by the script
	Timeout time.Duration
	RPS     float64 // launches per second, 0 = unlimited
	Burst   int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:    cfg.ProjectRoot,
		Python:  cfg.QuizgenPython,
		Script:  cfg.QuizgenScript,
		Output:  cfg.QuizgenOutput,
		Timeout: cfg.QuizgenTimeout,
		RPS:     cfg.QuizgenRPS,
		Burst:   cfg.QuizgenBurst,
	}
}

// Generator runs the external quiz script and owns the Store of its latest
// successful result.
type Generator struct {
	opts    Options
	store   *Store
	limiter *rate.Limiter

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options, store *Store) *Generator {
	if store == nil {
		store = NewStore()
	}
	// the child runs with Dir set to the root, so every path it receives
	// must already be absolute
	if abs, err := filepath.Abs(opts.Root); err == nil {
		opts.Root = abs
	}
	var lim *rate.Limiter
	if opts.RPS > 0 {
		lim = rate.NewLimiter(rate.Limit(opts.RPS), max(opts.Burst, 1))
	}
	base, cancel := context.WithCancel(context.Background())
	return &Generator{opts: opts, store: store, limiter: lim, base: base, cancel: cancel}
}

func (g *Generator) Store() *Store { return g.store }

// Submit starts a run for docPath (relative to the project root) and returns
// immediately. The run is bounded by Options.Timeout and by Close.
func (g *Generator) Submit(ctx context.Context, docPath string) *Task {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if g.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	stop := context.AfterFunc(g.base, cancel)

	t := &Task{done: make(chan struct{}), cancel: cancel}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer stop()
		defer cancel()
		t.finish(g.run(runCtx, docPath))
	}()
	return t
}

// Generate is Submit followed by Wait.
func (g *Generator) Generate(ctx context.Context, docPath string) ([]model.QuizItem, error) {
	return g.Submit(ctx, docPath).Wait(ctx)
}

// Close cancels every in-flight run and waits for the children to exit.
func (g *Generator) Close() {
	g.cancel()
	g.wg.Wait()
}

func (g *Generator) run(ctx context.Context, docPath string) ([]model.QuizItem, error) {
	log := telemetry.Component("quizgen").With().Str("doc", docPath).Logger()
	start := time.Now()

	python := resolve(g.opts.Root, g.opts.Python)
	script := resolve(g.opts.Root, g.opts.Script)
	doc := resolve(g.opts.Root, docPath)
	output := resolve(g.opts.Root, g.opts.Output)

	log.Info().Str("python", python).Msg("using_python")
	log.Info().Str("script", script).Msg("using_script")
	log.Info().Str("pdf", doc).Msg("using_document")

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lies past the deadline
			if ctx.Err() == nil {
				return nil, &Error{Kind: KindTimeout, Err: err}
			}
			return nil, ctxError(ctx, err)
		}
	}

	// drop a stale hand-off file so a script that exits 0 without writing
	// one is reported as missing output
	if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("output", output).Msg("stale_output_remove_failed")
	}

	pr, pw := io.Pipe()
	cmd := exec.CommandContext(ctx, python, script, doc)
	cmd.Dir = g.opts.Root
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Start(); err != nil {
		pw.Close()
		if ctx.Err() != nil {
			return nil, ctxError(ctx, err)
		}
		log.Error().Err(err).Msg("quizgen_launch_failed")
		return nil, &Error{Kind: KindLaunch, Err: err}
	}

	var waitErr error
	var eg errgroup.Group
	eg.Go(func() error {
		waitErr = cmd.Wait()
		return pw.Close()
	})
	eg.Go(func() error {
		return pump(pr, log)
	})
	pumpErr := eg.Wait()

	if ctx.Err() != nil {
		log.Warn().Err(ctx.Err()).Dur("elapsed", time.Since(start)).Msg("quizgen_aborted")
		return nil, ctxError(ctx, ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			log.Error().Int("exit_code", exitErr.ExitCode()).Msg("quizgen_failed")
			return nil, &Error{Kind: KindExit, ExitCode: exitErr.ExitCode(), Err: waitErr}
		}
		log.Error().Err(waitErr).Msg("quizgen_wait_failed")
		return nil, &Error{Kind: KindLaunch, Err: waitErr}
	}
	if pumpErr != nil {
		log.Error().Err(pumpErr).Msg("quizgen_output_read_failed")
		return nil, &Error{Kind: KindLaunch, Err: pumpErr}
	}

	items, err := readOutput(output)
	if err != nil {
		log.Error().Err(err).Msg("quizgen_output_invalid")
		return nil, err
	}

	g.store.Replace(items)
	log.Info().Int("questions", len(items)).Dur("elapsed", time.Since(start)).Msg("quizgen_loaded")
	return items, nil
}

func readOutput(path string) ([]model.QuizItem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindMissingOutput, Path: path, Err: err}
	}
	var items []model.QuizItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Path: path, Err: err}
	}
	if items == nil {
		return nil, &Error{Kind: KindMalformedOutput, Path: path, Err: errors.New("expected a JSON array")}
	}
	return items, nil
}

// pump logs every line of the child's combined output. It always reads r to
// EOF so the child never blocks on a full pipe.
func pump(r io.Reader, log zerolog.Logger) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanLines)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		log.Info().Str("line", line).Msg("quizgen_output")
	}
	err := sc.Err()
	if err != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	return err
}

// scanLines splits on \n and on bare \r, which progress bars use to redraw.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func ctxError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindCanceled, Err: err}
}

// resolve joins p onto root unless it is absolute or a bare command name
// that should be looked up on PATH.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if !strings.ContainsAny(p, `/\`) && filepath.Ext(p) == "" {
		if _, err := exec.LookPath(p); err == nil {
			return p
		}
	}
	return filepath.Join(root, p)
}
