package todo

import "fmt"

// FooterText is the summary line shown under the list.
func FooterText(incomplete int) string {
	if incomplete == 1 {
		return "1 task left"
	}
	return fmt.Sprintf("%d tasks left", incomplete)
}
