package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"recall/internal/client"
	"recall/internal/config"
)

type globalFlags struct {
	config string
	url    string
	owner  string
	token  string
	json   bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

func (c *commandContext) baseURL() string {
	if url := strings.TrimSpace(c.flags.url); url != "" {
		return url
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.BaseURL()
	}
	return "http://" + config.Default().API.Bind
}

func (c *commandContext) owner() string {
	if owner := strings.TrimSpace(c.flags.owner); owner != "" {
		return owner
	}
	return strings.TrimSpace(os.Getenv("RECALL_OWNER"))
}

func (c *commandContext) newClient() *client.Client {
	token := strings.TrimSpace(c.flags.token)
	header := ""
	if cfg, err := c.ensureConfig(); err == nil {
		if token == "" {
			token = cfg.API.Token
		}
		header = cfg.API.OwnerHeader
	}
	return client.New(c.baseURL(), client.WithToken(token), client.WithOwner(header, c.owner()))
}

// wrapDialError turns connection failures into actionable messages.
func (c *commandContext) wrapDialError(err error) error {
	var opErr *net.OpError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `recalld`", c.baseURL())
	case errors.As(err, &opErr):
		return fmt.Errorf("connect to daemon at %s: %w", c.baseURL(), err)
	default:
		return err
	}
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
