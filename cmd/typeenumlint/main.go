// Command typeenumlint reports union definitions typeenum cannot derive.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/example/typeenum/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
