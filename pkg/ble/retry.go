package ble

import (
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/go-ble/ble/linux/hci"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxRetryAttempts = 3

func retry(logger *zap.Logger, fn func() error) error {
	err := errors.New("not error")
	attempts := 0
	for err != nil && attempts < maxRetryAttempts {
		if attempts > 0 {
			logger.Debug("retrying hci command", zap.Int("attempt", attempts), zap.Error(err))
		}
		attempts += 1
		err = fn()
	}
	if err != nil {
		return errors.Wrap(err, "Exceeded attempts issue")
	}
	return nil
}

// send issues one HCI command, retrying transient controller failures
func send(m coreMethods, logger *zap.Logger, method string, c hci.Command) error {
	return retry(logger, func() error {
		e := util.CatchErrs(func() error { return m.Send(c, nil) })
		if e == nil {
			return nil
		}
		return errors.Wrap(e, method+" issue")
	})
}
