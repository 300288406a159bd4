package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/internal/logger"
	"github.com/withgalaxy/quasar/pkg/config"
	"github.com/withgalaxy/quasar/pkg/render"
	"github.com/withgalaxy/quasar/pkg/todo"
)

// app is what every command needs: the project root, its config and a
// logger built from both.
type app struct {
	root string
	cfg  *config.Config
	log  *zap.Logger
}

func setup() (*app, error) {
	root, err := projectDir()
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg *config.Config
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromDir(root)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("apply env: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &app{root: root, cfg: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func projectDir() (string, error) {
	if rootDir != "" {
		return filepath.Abs(rootDir)
	}
	return os.Getwd()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if silent {
		return logger.Silent(), nil
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{
		Env:     string(cfg.Log.Env),
		Level:   level,
		Version: Version,
	})
}

// writeView prints a markdown view, or its HTML rendering when html is set.
func writeView(w io.Writer, markdown string, html bool) error {
	if !html {
		_, err := io.WriteString(w, markdown)
		return err
	}
	out, err := render.HTML(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// importChecklist adds the tasks of a markdown checklist file to s.
func importChecklist(s *todo.Store, path string) (*todo.Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}
	list, err := todo.ParseChecklist(data)
	if err != nil {
		return nil, fmt.Errorf("parse checklist %s: %w", path, err)
	}
	s.Import(list.Items)
	return list, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
