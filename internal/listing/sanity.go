package listing

import "fmt"

// CheckKinds verifies that the leading listings have the expected kind
// labels, in order.
func CheckKinds(listings []Listing, want []string) error {
	if len(want) > len(listings) {
		return fmt.Errorf("sanity: expected at least %d listings, got %d", len(want), len(listings))
	}
	for i, w := range want {
		k, ok := ParseKind(w)
		if !ok {
			return fmt.Errorf("sanity: unknown kind %q", w)
		}
		if got := listings[i].Kind(); got != k {
			return fmt.Errorf("sanity: listing %d is %q, expected %q", i, got, w)
		}
	}
	return nil
}
