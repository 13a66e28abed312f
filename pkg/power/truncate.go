package power

import "github.com/sirupsen/logrus"

// logTruncated logs when a backend reported more power sources than it can
// hold. It reports whether any were dropped.
func logTruncated(backend string, total, limit int) bool {
	if total <= limit {
		return false
	}
	logrus.WithFields(logrus.Fields{
		"backend": backend,
		"total":   total,
		"kept":    limit,
	}).Debug("too many power sources, ignoring the rest")
	return true
}
