package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	xorscanVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	xorscan := NewAppBuild("xorscan", "cmd/xorscan", xorscanVersion)
	xorscan.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", xorscanVersion).
			CgoEnabled(false)
	})
	xorscan.Variant("windows", "amd64")
	xorscan.Variant("linux", "amd64")
	xorscan.Variant("linux", "arm64")
	xorscan.Variant("darwin", "amd64")
	xorscan.Variant("darwin", "arm64")
	b.ImportApp(xorscan)

	b.Execute()
}
