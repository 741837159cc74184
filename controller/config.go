package controller

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"time"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/server"
)

const (
	defaultProtectedMode = "yes"
)

// Config is the in-memory representation of the config file.
type Config struct {
	ServerID      string `json:"server_id"`
	ReadOnly      bool   `json:"read_only"`
	RequirePass   string `json:"requirepass"`
	ProtectedMode string `json:"protected-mode"`
}

func (c *Controller) loadConfig() error {
	data, err := ioutil.ReadFile(path.Join(c.dir, "config"))
	if err != nil {
		if os.IsNotExist(err) {
			return c.initConfig()
		}
		return err
	}
	if err := json.Unmarshal(data, &c.config); err != nil {
		return err
	}
	// verify the config
	switch strings.ToLower(c.config.ProtectedMode) {
	case "":
		c.config.ProtectedMode = defaultProtectedMode
	case "yes", "no":
		c.config.ProtectedMode = strings.ToLower(c.config.ProtectedMode)
	default:
		return fmt.Errorf("invalid protected-mode '%s'", c.config.ProtectedMode)
	}
	return nil
}

func (c *Controller) initConfig() error {
	c.config = Config{
		ServerID:      randomKey(16),
		ProtectedMode: defaultProtectedMode,
	}
	return c.writeConfig(true)
}

func randomKey(n int) string {
	b := make([]byte, n)
	nn, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	if nn != n {
		panic("random failed")
	}
	return fmt.Sprintf("%x", b)
}

func (c *Controller) writeConfig(writeProperties bool) error {
	data, err := json.MarshalIndent(c.config, "", "\t")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path.Join(c.dir, "config"), data, 0600)
}

func (c *Controller) getConfigProperty(name string) (string, bool) {
	switch name {
	default:
		return "", false
	case "requirepass":
		return c.config.RequirePass, true
	case "protected-mode":
		return c.config.ProtectedMode, true
	case "read-only":
		if c.config.ReadOnly {
			return "yes", true
		}
		return "no", true
	}
}

func (c *Controller) setConfigProperty(name, value string) error {
	switch name {
	default:
		return fmt.Errorf("Unsupported CONFIG parameter: %s", name)
	case "requirepass":
		c.config.RequirePass = value
	case "protected-mode":
		switch strings.ToLower(value) {
		default:
			return fmt.Errorf("Invalid argument '%s' for CONFIG SET '%s'", value, name)
		case "yes", "no":
			c.config.ProtectedMode = strings.ToLower(value)
		}
	case "read-only":
		switch strings.ToLower(value) {
		default:
			return fmt.Errorf("Invalid argument '%s' for CONFIG SET '%s'", value, name)
		case "yes":
			c.config.ReadOnly = true
		case "no":
			c.config.ReadOnly = false
		}
	}
	return nil
}

var configProperties = []string{"requirepass", "protected-mode", "read-only"}

func (c *Controller) cmdConfigGet(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var name string
	if vs, name, ok = tokenval(vs); !ok {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	m := make(map[string]string)
	if name == "*" {
		for _, prop := range configProperties {
			value, _ := c.getConfigProperty(prop)
			m[prop] = value
		}
	} else if value, ok := c.getConfigProperty(name); ok {
		m[name] = value
	}
	switch msg.OutputType {
	case server.JSON:
		data, err := json.Marshal(m)
		if err != nil {
			return "", err
		}
		res = `{"ok":true,"properties":` + string(data) + `,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		var vals []resp.Value
		for _, prop := range configProperties {
			if value, ok := m[prop]; ok {
				vals = append(vals, resp.StringValue(prop), resp.StringValue(value))
			}
		}
		data, err := resp.ArrayValue(vals).MarshalRESP()
		if err != nil {
			return "", err
		}
		res = string(data)
	}
	return res, nil
}

func (c *Controller) cmdConfigSet(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var name, value string
	if vs, name, ok = tokenval(vs); !ok {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		if vs, value, ok = tokenval(vs); !ok {
			return "", errInvalidNumberOfArguments
		}
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	if err := c.setConfigProperty(name, value); err != nil {
		return "", err
	}
	return server.OKMessage(msg, start), nil
}

func (c *Controller) cmdConfigRewrite(msg *server.Message) (res string, err error) {
	start := time.Now()
	if len(msg.Values) != 1 {
		return "", errInvalidNumberOfArguments
	}
	if err := c.writeConfig(false); err != nil {
		return "", err
	}
	return server.OKMessage(msg, start), nil
}
