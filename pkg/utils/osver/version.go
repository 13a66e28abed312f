// Package osver reports the running macOS version. Screen geometry APIs used
// for notch detection only exist on newer releases.
package osver

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	cached   Version
	initOnce sync.Once
)

// Version is a macOS release number.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Get returns the running macOS version. It is read once and cached.
func Get() Version {
	initOnce.Do(func() {
		cached = systemVersion()
	})
	return cached
}

// Parse parses "major.minor" or "major.minor.patch".
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version format: %s", s)
	}

	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", p, s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than
// other.
func (v Version) Compare(other Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is other or newer.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// IsAtLeast reports whether the running system is at least major.minor.patch.
func IsAtLeast(major, minor, patch int) bool {
	return Get().AtLeast(Version{Major: major, Minor: minor, Patch: patch})
}
