package rod_test

import (
	"testing"

	"github.com/fwojciec/fieldscrape/rod"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
)

func TestLaunchOptions_Launcher(t *testing.T) {
	t.Parallel()

	t.Run("always runs headless without images", func(t *testing.T) {
		t.Parallel()

		l := rod.LaunchOptions{}.Launcher()

		assert.True(t, l.Has(flags.Headless))
		assert.Equal(t, "imagesEnabled=false", l.Get("blink-settings"))
		assert.False(t, l.Has(flags.NoSandbox))
		assert.False(t, l.Has("user-agent"))
	})

	t.Run("applies configured settings", func(t *testing.T) {
		t.Parallel()

		l := rod.LaunchOptions{
			Bin:       "/opt/chrome/chrome",
			UserAgent: "fieldscrape-test",
			NoSandbox: true,
		}.Launcher()

		assert.Equal(t, "/opt/chrome/chrome", l.Get(flags.Bin))
		assert.Equal(t, "fieldscrape-test", l.Get("user-agent"))
		assert.True(t, l.Has(flags.NoSandbox))
	})

	t.Run("parses extra flags with or without values", func(t *testing.T) {
		t.Parallel()

		l := rod.LaunchOptions{
			Flags: []string{"--lang=de-DE", "disable-extensions", " ", "--"},
		}.Launcher()

		assert.Equal(t, "de-DE", l.Get("lang"))
		assert.True(t, l.Has("disable-extensions"))
	})
}
