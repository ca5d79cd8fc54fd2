package xtree

import "github.com/sirupsen/logrus"

// Log is the logger used by trees whose Config does not set one. Splits and
// other structural events go out at debug level.
var Log = logrus.New()
