package cerr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/taskbrief/taskbrief/pkg/clog"
)

type Error struct {
	Code  Code
	Msg   string // message reported alongside the code
	Err   error  // underlying error kept for the logs
	Stack string // stack trace, captured for error-level codes
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if code.LogLevel() == slog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Log records the error on the context attribute store and emits it at the
// severity of its code.
func Log(ctx context.Context, err error, msg string) {
	clog.AddError(ctx, err)
	level := slog.LevelError
	var cerr *Error
	if errors.As(err, &cerr) {
		level = cerr.Code.LogLevel()
		if cerr.Stack != "" {
			clog.AddStack(ctx, cerr.Stack)
		}
	}
	slog.Log(ctx, level, msg)
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}
