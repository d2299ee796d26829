package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"", INFO},
		{" warn ", WARN},
		{"warning", WARN},
		{"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestLevelRoundTripsThroughZap(t *testing.T) {
	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		test.That(t, levelFromZap(level.AsZap()), test.ShouldEqual, level)
	}
}

func TestObservedLoggerFiltersByLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("frame measured", "seq", 1)
	test.That(t, logs.FilterMessage("frame measured").Len(), test.ShouldEqual, 1)

	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	logger.Infow("dropped", "seq", 2)
	test.That(t, logs.FilterMessage("dropped").Len(), test.ShouldEqual, 0)
	logger.Warnw("skipped", "seq", 3)
	test.That(t, logs.FilterMessage("skipped").Len(), test.ShouldEqual, 1)
}

func TestSubloggerSharesLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("engine")
	logger.SetLevel(ERROR)
	sub.Warn("quiet")
	test.That(t, logs.Len(), test.ShouldEqual, 0)
	test.That(t, sub.GetLevel(), test.ShouldEqual, ERROR)
}

func TestBlankLoggerDiscards(t *testing.T) {
	logger := NewBlankLogger("cli")
	logger.Errorw("nothing", "k", "v")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestReplaceGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger, logs := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	Global().Sublogger("watch").Infow("frame ready", "seq", 1)
	entries := logs.FilterMessage("frame ready").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "watch")
}
