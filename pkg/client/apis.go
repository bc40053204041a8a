package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/tallycalc/tally/pkg/config"
	"github.com/tallycalc/tally/pkg/engine"
)

// Press sends a key sequence such as "12+3=" and returns the new state.
func (c *Client) Press(keys string) (*engine.Snapshot, error) {
	payload, err := json.Marshal(keys)
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/press", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to press %q", keys)
	}
	return parseSnapshot(ret)
}

func (c *Client) Clear() (*engine.Snapshot, error) {
	ret, err := c.Post("/clear", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to clear session")
	}
	return parseSnapshot(ret)
}

func (c *Client) GetState() (*engine.Snapshot, error) {
	ret, err := c.Get("/state")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get session state")
	}
	return parseSnapshot(ret)
}

func (c *Client) GetDisplay() (string, error) {
	ret, err := c.Get("/display")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get display")
	}
	var display string
	if err := json.Unmarshal([]byte(ret), &display); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal display")
	}
	return display, nil
}

func (c *Client) SetMaxDigits(n int) (string, error) {
	return message(c.Put("/max-digits", strconv.Itoa(n)))
}

func (c *Client) SetPrecision(n int) (string, error) {
	return message(c.Put("/precision", strconv.Itoa(n)))
}

// SetAutoClear sets the cron expression for clearing the session. An
// empty expression turns auto clear off.
func (c *Client) SetAutoClear(expr string) (string, error) {
	payload, err := json.Marshal(expr)
	if err != nil {
		return "", err
	}
	return message(c.Put("/auto-clear", string(payload)))
}

// SkipAutoClear skips the next scheduled clear.
func (c *Client) SkipAutoClear() (string, error) {
	return message(c.Put("/auto-clear/skip", ""))
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

// message unquotes a JSON string reply, falling back to the raw body.
func message(resp string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	var msg string
	if json.Unmarshal([]byte(resp), &msg) != nil {
		return resp, nil
	}
	return msg, nil
}

func parseSnapshot(resp string) (*engine.Snapshot, error) {
	var s engine.Snapshot
	if err := json.Unmarshal([]byte(resp), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal state")
	}
	return &s, nil
}
