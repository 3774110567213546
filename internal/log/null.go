package log

// nullLogger is a logger that does nothing.
type nullLogger struct{}

func (nullLogger) Debugf(format string, args ...interface{}) {}
func (nullLogger) Infof(format string, args ...interface{})  {}
func (nullLogger) Warnf(format string, args ...interface{})  {}
func (nullLogger) Errorf(format string, args ...interface{}) {}

// NewNull returns a logger that does nothing.
func NewNull() Logger {
	return nullLogger{}
}
