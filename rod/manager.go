package rod

import (
	"strings"
	"sync"

	"github.com/fwojciec/fieldscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the number of pages a browser renders before it is
// replaced with a fresh process.
const DefaultMaxPages = 75

// LaunchOptions controls how the Chrome process is started.
type LaunchOptions struct {
	// Bin is the Chrome executable. Empty lets rod find or download one.
	Bin string

	// UserAgent replaces the browser's User-Agent header when set.
	UserAgent string

	// NoSandbox disables the Chrome sandbox, which containers running as
	// root require.
	NoSandbox bool

	// Flags are extra command-line switches in "name" or "name=value" form.
	// Leading dashes are ignored.
	Flags []string
}

// Launcher returns a headless launcher configured from o.
func (o LaunchOptions) Launcher() *launcher.Launcher {
	l := launcher.New().
		Set("disable-gpu").
		Set("mute-audio").
		Set("blink-settings", "imagesEnabled=false").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	if o.Bin != "" {
		l = l.Bin(o.Bin)
	}
	if o.UserAgent != "" {
		l = l.Set("user-agent", o.UserAgent)
	}
	if o.NoSandbox {
		l = l.NoSandbox(true)
	}
	for _, f := range o.Flags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(strings.TrimSpace(f), "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

// ManagerStats is a snapshot of a BrowserManager's counters.
type ManagerStats struct {
	// Pages opened on the current browser.
	Pages int64

	// InFlight is the number of pages not yet released.
	InFlight int

	// Launches counts browser processes started, including recycles.
	Launches int
}

// BrowserManager owns the Chrome process shared by every Fetch call. A
// browser that has opened MaxPages pages is replaced before the next page is
// opened, but only once no page is in flight on it.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	launch   LaunchOptions
	maxPages int64

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	inFlight int
	launches int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser opens before it is recycled.
// Values below 1 keep the default.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// WithLaunchOptions sets how Chrome is started, for the first launch and
// every recycle.
func WithLaunchOptions(o LaunchOptions) ManagerOption {
	return func(bm *BrowserManager) {
		bm.launch = o
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}
	return bm, nil
}

// NewPage opens a blank page. The returned release func closes the page and
// must be called exactly once when the caller is done with it; extra calls
// are ignored.
func (bm *BrowserManager) NewPage() (*rod.Page, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, fieldscrape.Errorf(fieldscrape.EINVALID, "browser is closed")
	}
	if bm.pages >= bm.maxPages && bm.inFlight == 0 {
		bm.recycleBrowser()
	}

	page, err := bm.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nil, fieldscrape.WrapError(fieldscrape.EFETCH, err, "open browser page")
	}
	bm.pages++
	bm.inFlight++

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = page.Close()
			bm.mu.Lock()
			bm.inFlight--
			bm.mu.Unlock()
		})
	}
	return page, release, nil
}

// Stats returns the current counters.
func (bm *BrowserManager) Stats() ManagerStats {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return ManagerStats{Pages: bm.pages, InFlight: bm.inFlight, Launches: bm.launches}
}

// LauncherPID returns the process ID of the browser launcher, or 0 once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.closeBrowser()
}

// launchBrowser starts a browser and connects to it. Must be called with mu
// held or before the manager is shared.
func (bm *BrowserManager) launchBrowser() error {
	l := bm.launch.Launcher()

	u, err := l.Launch()
	if err != nil {
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "launch browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "connect to browser")
	}

	bm.browser = browser
	bm.launcher = l
	bm.pages = 0
	bm.launches++
	return nil
}

// closeBrowser shuts down the current browser and launcher. Must be called
// with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser replaces the browser with a fresh one. If the new launch
// fails the old browser stays in service. Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher

	if err := bm.launchBrowser(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}
