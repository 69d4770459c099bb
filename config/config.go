// Package config holds the application configuration tree loaded
// through go-config. Values come from config files with environment
// overrides; secret material (pepper, cookie key) is referenced by
// file path and loaded by the server at startup, never inlined here.
package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type BaseConfig struct {
	Server      *Server      `json:"server" yaml:"server"`
	Persistence *Persistence `json:"persistence" yaml:"persistence"`
	Session     *Session     `json:"session" yaml:"session"`
	Secrets     *Secrets     `json:"secrets" yaml:"secrets"`
	Site        *Site        `json:"site" yaml:"site"`
}

func (c *BaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Persistence, validation.Required),
		validation.Field(&c.Secrets, validation.Required),
	)
}

func (c *BaseConfig) GetServer() *Server {
	if c.Server == nil {
		c.Server = &Server{}
	}
	return c.Server
}

func (c *BaseConfig) GetPersistence() *Persistence {
	if c.Persistence == nil {
		c.Persistence = &Persistence{}
	}
	return c.Persistence
}

func (c *BaseConfig) GetSession() *Session {
	if c.Session == nil {
		c.Session = &Session{}
	}
	return c.Session
}

func (c *BaseConfig) GetSecrets() *Secrets {
	if c.Secrets == nil {
		c.Secrets = &Secrets{}
	}
	return c.Secrets
}

func (c *BaseConfig) GetSite() *Site {
	if c.Site == nil {
		c.Site = &Site{}
	}
	return c.Site
}

type Server struct {
	Address      string `json:"address" yaml:"address"`
	CookieSecure bool   `json:"cookie_secure" yaml:"cookie_secure"`
}

func (s *Server) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Address, validation.Required),
	)
}

func (s *Server) GetAddress() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

func (s *Server) GetCookieSecure() bool {
	return s.CookieSecure
}

type Persistence struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

func (p *Persistence) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DSN, validation.Required),
	)
}

func (p *Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}

type Session struct {
	// Backend selects where session records live: "memory" or "sqlite".
	Backend       string `json:"backend" yaml:"backend"`
	CookieName    string `json:"cookie_name" yaml:"cookie_name"`
	TTLExpression string `json:"ttl" yaml:"ttl"`
}

func (s *Session) GetBackend() string {
	if s.Backend == "" {
		return "sqlite"
	}
	return s.Backend
}

func (s *Session) GetCookieName() string {
	return s.CookieName
}

func (s *Session) GetTTL() time.Duration {
	if s.TTLExpression == "" {
		return 0
	}
	dur, err := time.ParseDuration(s.TTLExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", s.TTLExpression),
		)
	}
	return dur
}

// Secrets points at files holding secret material. Paths only: the
// contents are read at startup and never appear in config dumps.
type Secrets struct {
	PepperFile    string `json:"pepper_file" yaml:"pepper_file"`
	CookieKeyFile string `json:"cookie_key_file" yaml:"cookie_key_file"`
}

func (s *Secrets) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.PepperFile, validation.Required),
		validation.Field(&s.CookieKeyFile, validation.Required),
	)
}

func (s *Secrets) GetPepperFile() string {
	return s.PepperFile
}

func (s *Secrets) GetCookieKeyFile() string {
	return s.CookieKeyFile
}

type Site struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	DictionaryFile string `json:"dictionary_file" yaml:"dictionary_file"`
	ViewsDir       string `json:"views_dir" yaml:"views_dir"`
}

func (s *Site) GetBaseURL() string {
	if s.BaseURL == "" {
		return "http://localhost:8080"
	}
	return s.BaseURL
}

func (s *Site) GetDictionaryFile() string {
	return s.DictionaryFile
}

func (s *Site) GetViewsDir() string {
	if s.ViewsDir == "" {
		return "./views"
	}
	return s.ViewsDir
}
