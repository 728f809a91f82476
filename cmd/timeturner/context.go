package main

import (
	"net"
	"strings"
	"sync"

	"timeturner/internal/config"
)

type commandContext struct {
	serverFlag *string
	tokenFlag  *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(serverFlag, tokenFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		tokenFlag:  tokenFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// serverURL resolves the API base URL: the --server flag wins, otherwise the
// configured bind address with wildcard hosts rewritten to loopback.
func (c *commandContext) serverURL() string {
	if c.serverFlag != nil {
		if trimmed := strings.TrimSpace(*c.serverFlag); trimmed != "" {
			return strings.TrimRight(trimmed, "/")
		}
	}

	bind := "127.0.0.1:8080"
	if cfg := c.configValue(); cfg != nil && strings.TrimSpace(cfg.Paths.APIBind) != "" {
		bind = strings.TrimSpace(cfg.Paths.APIBind)
	}
	host, port, err := net.SplitHostPort(bind)
	if err == nil {
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "127.0.0.1"
		}
		bind = net.JoinHostPort(host, port)
	}
	return "http://" + bind
}

func (c *commandContext) apiToken() string {
	if c.tokenFlag != nil {
		if trimmed := strings.TrimSpace(*c.tokenFlag); trimmed != "" {
			return trimmed
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return strings.TrimSpace(cfg.Paths.APIToken)
	}
	return ""
}

func (c *commandContext) client() *apiClient {
	return newAPIClient(c.serverURL(), c.apiToken())
}
