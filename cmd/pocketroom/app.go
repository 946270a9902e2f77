package main

import (
	"time"

	"github.com/hollandm/pocketroom/internal/config"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
	"github.com/hollandm/pocketroom/internal/store"
)

// app bundles the wired components every command works against.
type app struct {
	baseDir string
	cfg     *config.Config
	store   *store.SQLite
	repo    *repo.Repository
	tracker *progress.Tracker
	editor  *editor.Editor
}

// openApp opens the database under baseDir and wires the component graph.
func openApp(baseDir string) (*app, error) {
	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(baseDir, cfg)
	if err != nil {
		return nil, err
	}

	r, err := repo.New(st)
	if err != nil {
		st.Close()
		return nil, err
	}

	tr, err := progress.New(st)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		baseDir: baseDir,
		cfg:     cfg,
		store:   st,
		repo:    r,
		tracker: tr,
		editor:  editor.New(r),
	}, nil
}

// autosaveDelay returns the configured debounce delay.
func (a *app) autosaveDelay() time.Duration {
	return time.Duration(a.cfg.AutosaveDelayMS) * time.Millisecond
}

func (a *app) Close() error {
	return a.store.Close()
}
