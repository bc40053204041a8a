package daemon

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallycalc/tally/pkg/config"
	"github.com/tallycalc/tally/pkg/events"
	"github.com/tallycalc/tally/pkg/keypad"
	"github.com/tallycalc/tally/pkg/version"
)

func getState(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, session.State())
}

func getDisplay(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, session.State().Display)
}

func press(c *gin.Context) {
	var keys string
	if err := c.BindJSON(&keys); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	evs, err := keypad.ParseSequence(keys)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	snap := session.Press(evs)
	logrus.WithFields(logrus.Fields{
		"keys":     keys,
		"display":  snap.Display,
		"operator": snap.Operator.String(),
	}).Debug("keys pressed")

	c.IndentedJSON(http.StatusOK, snap)
}

func clearSession(c *gin.Context) {
	snap := session.Clear()
	sseHub.Publish(events.SessionClear, events.SessionClearEvent{
		Reason: "requested",
		Ts:     time.Now().Unix(),
	})
	logrus.Debug("session cleared")
	c.IndentedJSON(http.StatusOK, snap)
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func setMaxDigits(c *gin.Context) {
	var d int
	if err := c.BindJSON(&d); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if d < config.MinMaxDigits || d > config.MaxMaxDigits {
		err := fmt.Errorf("max digits must be between %d and %d, got %d", config.MinMaxDigits, config.MaxMaxDigits, d)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetMaxDigits(d)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	session.Configure(conf.MaxDigits(), conf.Precision())

	logrus.Infof("set max digits to %d", d)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set max digits to %d", d))
}

func setPrecision(c *gin.Context) {
	var p int
	if err := c.BindJSON(&p); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if p < config.MinPrecision || p > config.MaxPrecision {
		err := fmt.Errorf("precision must be between %d and %d, got %d", config.MinPrecision, config.MaxPrecision, p)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetPrecision(p)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	session.Configure(conf.MaxDigits(), conf.Precision())

	logrus.Infof("set precision to %d", p)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("results are rounded to %d decimal places", p))
}

func setAutoClear(c *gin.Context) {
	var expr string
	if err := c.BindJSON(&expr); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if expr != "" {
		if _, err := autoClear.Parse(expr); err != nil {
			err = fmt.Errorf("invalid cron expression %q: %v", expr, err)
			c.IndentedJSON(http.StatusBadRequest, err.Error())
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
	}

	conf.SetAutoClear(expr)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	applyAutoClear(expr)

	if expr == "" {
		logrus.Info("disabled auto clear")
		c.IndentedJSON(http.StatusCreated, "auto clear disabled")
		return
	}

	next, _ := autoClear.Status()
	msg := fmt.Sprintf("session will be cleared on schedule %q", expr)
	if !next.IsZero() {
		msg += fmt.Sprintf(", next at %s", next.Format(time.DateTime))
	}
	logrus.Infof("set auto clear schedule to %q", expr)
	c.IndentedJSON(http.StatusCreated, msg)
}

// skipAutoClear drops the next scheduled clear. Later runs are unaffected.
func skipAutoClear(c *gin.Context) {
	if err := autoClear.Skip(); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	next, _ := autoClear.Status()
	logrus.WithField("next", next.Format(time.DateTime)).Info("skipped next auto clear")

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("next auto clear skipped, next at %s", next.Format(time.DateTime)))
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// streamEvents sends the current state, then every update, as server-sent
// events until the client goes away or the server shuts down.
func streamEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer func() {
		sseHub.Unsubscribe(ch)
		logrus.WithField("subscribers", sseHub.Subscribers()).Debug("event stream closed")
	}()
	logrus.WithField("subscribers", sseHub.Subscribers()).Debug("event stream opened")

	snap := session.State()
	c.SSEvent(events.DisplayUpdate, events.DisplayUpdateEvent{
		Display:  snap.Display,
		Operator: snap.Operator.String(),
		Selected: snap.Selected.String(),
		Error:    snap.Error,
		Ts:       time.Now().Unix(),
	})
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		case <-streamsDone:
			return false
		}
	})
}
