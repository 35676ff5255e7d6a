package acquire

import "errors"

// The reveal loops are written against plain function arguments so the
// termination rules can be tested without a browser.

const (
	maxStaleScrolls = 3  // consecutive scrolls with no new results
	maxStaleResults = 8  // cycles without new results before the final burst
	maxCycles       = 50 // hard cap for the scroll-and-click loop
	finalBurst      = 4  // scroll+click attempts after the result plateau
	maxEmptyPages   = 3  // consecutive zero-record pages before pagination stops
)

// ScrollUntilCount repeatedly counts rendered results and scrolls the feed.
// It stops when count reaches target or when three consecutive scrolls
// produce no new count, and returns the final count.
func ScrollUntilCount(target int, count func() (int, error), scroll func() error) (int, error) {
	last, stale := -1, 0
	for {
		n, err := count()
		if err != nil {
			return 0, err
		}
		if n >= target {
			return n, nil
		}
		if n > last {
			last, stale = n, 0
		} else {
			stale++
			if stale >= maxStaleScrolls {
				return n, nil
			}
		}
		if err := scroll(); err != nil {
			return n, err
		}
	}
}

// ScrollClickUntilCount is the counting loop for surfaces that hide results
// behind "show more" controls: every cycle scrolls and attempts a click.
// Termination: target reached, scroll unresponsive for 3 cycles, no new
// results for 8 cycles (after a bounded burst of final scroll+click
// attempts), or the hard cycle cap.
func ScrollClickUntilCount(target int, count func() (int, error), scroll func() (bool, error), click func() bool) (int, error) {
	last, scrollStale, resultStale := -1, 0, 0
	n := 0
	for cycle := 0; cycle < maxCycles; cycle++ {
		var err error
		n, err = count()
		if err != nil {
			return n, err
		}
		if n >= target {
			return n, nil
		}

		if n > last {
			last, resultStale = n, 0
		} else {
			resultStale++
		}
		if resultStale >= maxStaleResults {
			for i := 0; i < finalBurst; i++ {
				_, _ = scroll()
				click()
			}
			if final, err := count(); err == nil && final > n {
				return final, nil
			}
			return n, nil
		}

		moved, err := scroll()
		if err != nil {
			return n, err
		}
		if moved {
			scrollStale = 0
		} else {
			scrollStale++
			if scrollStale >= maxStaleScrolls {
				return n, nil
			}
		}
		click()
	}
	return n, nil
}

// Paginate loops over sequential page numbers. page extracts one page's
// records and returns how many it yielded; hasNext reports whether a
// next-page control is present. A page failure increments the failure
// counter instead of aborting; a CAPTCHA challenge is fatal for the source
// and ends the loop immediately. Returns total records and failed pages.
func Paginate(target int, page func(num int) (int, error), hasNext func() bool) (total, failures int) {
	emptyStreak := 0
	for num := 1; ; num++ {
		got, err := page(num)
		if errors.Is(err, ErrCaptcha) {
			return total, failures
		}
		if err != nil {
			failures++
			got = 0
		}
		if got == 0 {
			emptyStreak++
		} else {
			emptyStreak = 0
		}
		total += got

		if total >= target || emptyStreak >= maxEmptyPages || !hasNext() {
			return total, failures
		}
	}
}
