package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"skipper/internal/analysis"
	"skipper/internal/config"
	"skipper/internal/logging"
	"skipper/internal/stats"
	"skipper/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withCache opens the analysis cache for one command invocation.
func (c *commandContext) withCache(fn func(*analysis.Cache) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	kv, err := store.OpenSQLite(cfg.CacheDBPath())
	if err != nil {
		return err
	}
	defer kv.Close()
	return fn(analysis.NewCache(kv, cfg.Cache.RetentionDays, logging.NewNop()))
}

// withStats opens the stats repository for one command invocation.
func (c *commandContext) withStats(fn func(*stats.Repository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	repo, err := stats.Open(cfg.StatsDBPath())
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
