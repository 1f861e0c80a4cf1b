package browser

import "fmt"

// harnessScript renders the in-page `toolproof` harness, injected on every
// navigation via Page.EvalOnNewDocument, the idiom grounded on codenerd's
// session_manager.go comment about guaranteeing presence after page
// reloads. It exposes element polling, predicate waiting, and throwing
// assertions prefixed with the `:toolproof_err:` sentinel so the Go side
// can distinguish assertion failures from generic script errors.
// defaultTimeoutMs is the configured browser_timeout, used whenever a
// poll call omits its own timeout argument.
func harnessScript(defaultTimeoutMs int64) string {
	return fmt.Sprintf(harnessJSTemplate, defaultTimeoutMs, defaultTimeoutMs, defaultTimeoutMs)
}

const harnessJSTemplate = `
(() => {
  if (window.toolproof) return;
  const POLL_MS = 50;
  const err = (msg) => { throw ':toolproof_err: ' + msg; };

  function poll(fn, timeoutMs) {
    return new Promise((resolve, reject) => {
      const start = Date.now();
      const tick = () => {
        let result;
        try { result = fn(); } catch (e) { reject(e); return; }
        if (result) { resolve(result); return; }
        if (Date.now() - start > timeoutMs) {
          reject(':toolproof_err: timed out waiting for condition');
          return;
        }
        setTimeout(tick, POLL_MS);
      };
      tick();
    });
  }

  window.toolproof_log_events = { ALL: [] };
  ['log', 'warn', 'error', 'debug'].forEach((level) => {
    const orig = console[level];
    console[level] = function (...args) {
      window.toolproof_log_events.ALL.push({ level, args: args.map(String) });
      return orig.apply(console, args);
    };
  });

  window.toolproof = {
    querySelector(sel, timeoutMs) {
      return poll(() => document.querySelector(sel), timeoutMs || %d);
    },
    querySelectorAll(sel, timeoutMs) {
      return poll(() => {
        const all = document.querySelectorAll(sel);
        return all.length > 0 ? Array.from(all) : null;
      }, timeoutMs || %d);
    },
    waitFor(pred, timeoutMs) {
      return poll(pred, timeoutMs || %d);
    },
    assert(v) { if (!v) err('assertion failed'); },
    assert_eq(a, b) { if (JSON.stringify(a) !== JSON.stringify(b)) err('expected ' + JSON.stringify(a) + ' to equal ' + JSON.stringify(b)); },
    assert_lte(a, b) { if (!(a <= b)) err(a + ' is not <= ' + b); },
    assert_gte(a, b) { if (!(a >= b)) err(a + ' is not >= ' + b); },
  };
})();
`
