package main

import (
	"flag"
	"strconv"
)

// initLogging applies the logging flags to glog. glog only reads the standard
// flag set, so the flag set is marked parsed (cobra owns the command line)
// and the values are poked in directly.
func initLogging(logToStderr bool, verbose int) {
	if !flag.Parsed() {
		_ = flag.CommandLine.Parse(nil)
	}
	if logToStderr {
		_ = flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		_ = flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}
