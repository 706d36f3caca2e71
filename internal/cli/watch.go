package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// watch generates once, then again after every burst of changes to Go files
// in the loaded package directories. It returns when ctx is cancelled.
func (r *runner) watch(ctx context.Context, patterns []string) error {
	if err := r.run(ctx, patterns); err != nil {
		r.log.Errorw("Generation failed", "error", err.Error())
	}

	pkgs, err := r.load(ctx, patterns)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer func() { _ = watcher.Close() }()

	dirs := map[string]bool{}
	for _, pkg := range pkgs {
		if dirs[pkg.Dir] {
			continue
		}
		dirs[pkg.Dir] = true
		if err := watcher.Add(pkg.Dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", pkg.Dir)
		}
		r.log.Debugw("Watching", "dir", pkg.Dir)
	}
	r.log.Infow("Watching for changes", "dirs", len(dirs))

	return r.watchLoop(ctx, watcher.Events, watcher.Errors, func(ctx context.Context) {
		if err := r.run(ctx, patterns); err != nil {
			r.log.Errorw("Generation failed", "error", err.Error())
		}
	})
}

// watchLoop debounces file events and calls regenerate once per burst.
func (r *runner) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, regenerate func(context.Context)) error {
	debounce := r.cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			r.log.Debugw("Change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			r.log.Warnw("Watch error", "error", err)

		case <-fire:
			fire = nil
			regenerate(ctx)
		}
	}
}

// relevant reports whether an event touches a Go source file the generator
// did not write itself.
func (r *runner) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return !r.isOutput(name)
}

func (r *runner) isOutput(name string) bool {
	testName := func(s string) string { return strings.TrimSuffix(s, ".go") + "_test.go" }
	opts := r.cfg.GeneratorOptions()
	switch {
	case name == opts.Output, name == testName(opts.Output):
		return true
	case opts.Colocated && opts.Suffix != "" && (strings.HasSuffix(name, opts.Suffix) || strings.HasSuffix(name, testName(opts.Suffix))):
		return true
	}
	return false
}
