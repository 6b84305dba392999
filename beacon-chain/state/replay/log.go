package replay

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "replay")
