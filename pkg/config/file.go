package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		MaxDigits:          ptr.To(engine.DefaultMaxDigits),
		Precision:          ptr.To(engine.DefaultPrecision),
		AllowNonRootAccess: ptr.To(false),
		AutoClear:          ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	MaxDigits          *int    `json:"maxDigits,omitempty"`
	Precision          *int    `json:"precision,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	AutoClear          *string `json:"autoClear,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		MaxDigits:          ptr.To(c.MaxDigits()),
		Precision:          ptr.To(c.Precision()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		AutoClear:          ptr.To(c.AutoClear()),
	}

	return rawConfig, nil
}

// Path returns the file the config is loaded from.
func (f *File) Path() string {
	return f.filepath
}

func (f *File) MaxDigits() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.MaxDigits != nil {
		return *f.c.MaxDigits
	}
	return *defaultFileConfig.MaxDigits
}

func (f *File) Precision() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Precision != nil {
		return *f.c.Precision
	}
	return *defaultFileConfig.Precision
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var allowNonRootAccess bool

	if f.c.AllowNonRootAccess != nil {
		allowNonRootAccess = *f.c.AllowNonRootAccess
	} else {
		allowNonRootAccess = *defaultFileConfig.AllowNonRootAccess
	}

	return allowNonRootAccess
}

func (f *File) AutoClear() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AutoClear != nil {
		return *f.c.AutoClear
	}
	return *defaultFileConfig.AutoClear
}

func (f *File) SetMaxDigits(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i < MinMaxDigits || i > MaxMaxDigits {
		panic("max digits must be between 1 and 15")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MaxDigits = &i
}

func (f *File) SetPrecision(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i < MinPrecision || i > MaxPrecision {
		panic("precision must be between 0 and 15")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Precision = &i
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetAutoClear(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AutoClear = &s
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"maxDigits":          f.MaxDigits(),
		"precision":          f.Precision(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"autoClear":          f.AutoClear(),
	}
}

func (c *RawFileConfig) validate() error {
	if c.MaxDigits != nil && (*c.MaxDigits < MinMaxDigits || *c.MaxDigits > MaxMaxDigits) {
		return pkgerrors.Errorf("maxDigits must be between %d and %d, got %d", MinMaxDigits, MaxMaxDigits, *c.MaxDigits)
	}
	if c.Precision != nil && (*c.Precision < MinPrecision || *c.Precision > MaxPrecision) {
		return pkgerrors.Errorf("precision must be between %d and %d, got %d", MinPrecision, MaxPrecision, *c.Precision)
	}
	return nil
}
