package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"demoforge/internal/api"
	"demoforge/internal/config"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	httpClient *http.Client
}

func newCommandContext(configFlag, apiFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) apiBaseURL() string {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return strings.TrimRight(strings.TrimSpace(*c.apiFlag), "/")
	}
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return "http://127.0.0.1:7490"
	}
	bind := cfg.Paths.APIBind
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	}
	return "http://" + bind
}

// getJSON performs a GET against the running server and decodes the body.
func (c *commandContext) getJSON(path string, out any) error {
	resp, err := c.httpClient.Get(c.apiBaseURL() + path)
	if err != nil {
		return fmt.Errorf("connect to demoforge server: %w (start it with `demoforge serve`)", err)
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, out)
}

// postJSON sends a JSON request body and decodes the response.
func (c *commandContext) postJSON(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Post(c.apiBaseURL()+path, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("connect to demoforge server: %w (start it with `demoforge serve`)", err)
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, out)
}

func decodeAPIResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil {
			if apiErr.Message != "" {
				return fmt.Errorf("server: %s", apiErr.Message)
			}
			if apiErr.Error != "" {
				return fmt.Errorf("server: %s", apiErr.Error)
			}
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
