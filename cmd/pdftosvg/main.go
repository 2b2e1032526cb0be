// pdftosvg converts PDF pages to standalone SVG files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brackwater/pdf2svg/pkg/pdf"
)

func main() {
	firstPage := flag.Int("f", 1, "first page to convert")
	lastPage := flag.Int("l", 0, "last page to convert (0 = last page of document)")
	minStrokeWidth := flag.Float64("min-stroke-width", 0, "floor stroke widths below this value")
	includeHiddenText := flag.Bool("include-hidden-text", false, "keep text painted with render mode 3 (invisible)")
	quiet := flag.Bool("q", false, "don't print any messages")
	version := flag.Bool("v", false, "print version info")
	help := flag.Bool("h", false, "print usage information")
	flag.BoolVar(help, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdftosvg version 1.0.0\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdftosvg [options] <PDF-file> [<output-file-or-prefix>]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("pdftosvg version 1.0.0")
		return
	}

	if *help || flag.NArg() < 1 {
		flag.Usage()
		return
	}

	pdfFile := flag.Arg(0)
	outputFile := flag.Arg(1)
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filepath.Base(pdfFile), ".pdf")
	}

	doc, err := pdf.Open(pdfFile)
	if err != nil {
		reportOpenError(err)
		os.Exit(1)
	}

	first := *firstPage
	if first < 1 {
		first = 1
	}
	last := *lastPage
	if last == 0 || last > doc.NumPages() {
		last = doc.NumPages()
	}

	opts := &pdf.Options{
		MinStrokeWidth: *minStrokeWidth,
		IncludeHiddenText: *includeHiddenText,
	}

	exitCode := 0
	for pageNum := first; pageNum <= last; pageNum++ {
		page, err := doc.GetPage(pageNum)
		if err != nil {
			fmt.Fprintf(os.Stderr, "page %d: %v\n", pageNum, err)
			exitCode = 1
			continue
		}

		outPath := outputFile + ".svg"
		if last != first {
			outPath = fmt.Sprintf("%s-%d.svg", outputFile, pageNum)
		}

		result, err := page.SaveSVG(outPath, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "page %d: %v\n", pageNum, err)
			exitCode = 1
			continue
		}

		if !*quiet {
			fmt.Printf("Wrote %s\n", outPath)
			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stderr, " warning: %s\n", w.String())
			}
		}
	}

	os.Exit(exitCode)
}

func reportOpenError(err error) {
	switch err.(type) {
	case *pdf.EncryptedError:
		fmt.Fprintf(os.Stderr, "cannot convert: %v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "error opening PDF: %v\n", err)
	}
}
