// Package certpress generates printable completion certificates in batches.
//
// # Quick Start
//
// Create a generator, run a job with the two spreadsheets, and close when done:
//
//	gen, err := certpress.NewGenerator(
//	    certpress.WithTemplatePath("certificate-template.jpg"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	res, err := gen.Generate(ctx, certpress.Input{
//	    Roster:  &certpress.Upload{Name: "ms6.xlsx", Data: roster},
//	    Results: &certpress.Upload{Name: "bms.xlsx", Data: results},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.PDFPath)
//
// # Job Pipeline
//
// A job runs these stages in order:
//
//  1. Both uploads are stored in the intake folder as MS6.<ext> and BMS.<ext>
//  2. Passing results are joined with the roster, ordered by group and
//     numbered within each group
//  3. One JPEG certificate per record is drawn onto the template
//  4. The certificates are laid out two per page in certificates.md
//  5. The document is printed to certificates.pdf via headless Chrome (go-rod)
//
// Progress is published through a JobState shared with readers such as the
// HTTP server. Files stay in the workspace until Reset.
//
// # Errors
//
// Failures wrap one of ErrMissingInput, ErrMalformedInput, ErrRenderFailure,
// ErrFileSystem or ErrConversionFailed; test with errors.Is.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package certpress
