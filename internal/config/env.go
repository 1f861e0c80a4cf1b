package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Overlay applies TOOLPROOF_* environment variables onto base. This is
// intentionally plain Go rather than a struct-tag-driven env library: the
// pack's only full configuration framework (spf13/viper) bundles flag and
// file layers this kernel already resolves separately, so adopting it here
// would duplicate layering logic without adding anything this narrow
// concern needs.
func Overlay(base RunSettings) RunSettings {
	out := base
	if v, ok := os.LookupEnv("TOOLPROOF_ROOT"); ok {
		out.Root = v
	}
	if v, ok := lookupInt("TOOLPROOF_CONCURRENCY"); ok {
		out.Concurrency = v
	}
	if v, ok := lookupInt("TOOLPROOF_TIMEOUT"); ok {
		out.Timeout = time.Duration(v) * time.Second
	}
	if v, ok := lookupInt("TOOLPROOF_BROWSER_TIMEOUT"); ok {
		out.BrowserTimeout = time.Duration(v) * time.Second
	}
	if v, ok := os.LookupEnv("TOOLPROOF_PLACEHOLDER_DELIMITER"); ok && len(v) == 1 {
		out.PlaceholderDelimiter = v[0]
	}
	if v, ok := os.LookupEnv("TOOLPROOF_BEFORE_ALL"); ok && v != "" {
		out.BeforeAll = strings.Split(v, ";")
	}
	if v, ok := lookupBool("TOOLPROOF_SKIP_HOOKS"); ok {
		out.SkipHooks = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_BROWSER"); ok {
		out.Browser = Browser(v)
	}
	if v, ok := lookupInt("TOOLPROOF_RETRY_COUNT"); ok {
		out.RetryCount = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_NAME"); ok {
		out.Name = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_PATH"); ok {
		out.Path = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_PLATFORMS"); ok {
		out.Platforms = v
	}
	if v, ok := lookupBool("TOOLPROOF_INTERACTIVE"); ok {
		out.Interactive = v
	}
	if v, ok := lookupBool("TOOLPROOF_ALL"); ok {
		out.All = v
	}
	if v, ok := lookupBool("TOOLPROOF_DEBUGGER"); ok {
		out.Debugger = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_FAILURE_SCREENSHOT_LOCATION"); ok {
		out.FailureScreenshotDir = v
	}
	if v, ok := lookupBool("TOOLPROOF_PORCELAIN"); ok {
		out.Porcelain = v
	}
	if v, ok := lookupBool("TOOLPROOF_VERBOSE"); ok {
		out.Verbose = v
	}
	if v, ok := os.LookupEnv("TOOLPROOF_SUPPORTED_VERSIONS"); ok {
		out.SupportedVersions = v
	}
	return out
}

func lookupInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
