package base

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultChromeDriverPath = "/usr/local/bin/chromedriver"

// driverPorts hands out chromedriver ports to concurrent page loads.
var driverPorts = NewPortManager(4444, 16)

func chromeDriverPath() string {
	if p := os.Getenv("CHROMEDRIVER_PATH"); p != "" {
		return p
	}
	return defaultChromeDriverPath
}

// FetchDocumentSelenium renders the URL through a chromedriver session and
// parses the page source.
func (l *PageLoader) FetchDocumentSelenium(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := driverPorts.GetPort()
	if err != nil {
		return nil, fmt.Errorf("port error: %w", err)
	}
	defer driverPorts.ReleasePort(port)

	service, err := selenium.NewChromeDriverService(chromeDriverPath(), port)
	if err != nil {
		return nil, fmt.Errorf("error starting Chrome driver service: %w", err)
	}
	defer service.Stop()

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", l.UserAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		return nil, fmt.Errorf("error creating WebDriver: %w", err)
	}
	defer driver.Quit()

	if err := driver.SetPageLoadTimeout(60 * time.Second); err != nil {
		return nil, fmt.Errorf("page load timeout: %w", err)
	}
	if err := driver.Get(url); err != nil {
		return nil, fmt.Errorf("navigation error: %w", err)
	}

	// Lazy-loaded collection grids only render once scrolled into view.
	if _, err := driver.ExecuteScript(`window.scrollTo(0, document.body.scrollHeight);`, nil); err != nil {
		return nil, fmt.Errorf("scroll error: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(renderWait):
	}

	html, err := driver.PageSource()
	if err != nil {
		return nil, fmt.Errorf("page source error: %w", err)
	}

	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
