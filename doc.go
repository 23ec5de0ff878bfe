// Package figmameta fetches node subtrees from the Figma API and trims them
// to a fixed allowlist of fields, producing compact JSON for code generators.
//
// The CLI and the browser front end live in cmd/figma-meta; this root package
// exposes the same pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmameta:
//
//	import "github.com/hellenic-development/figma-meta" // package figmameta
//
// # Quick start
//
//	result, err := figmameta.Run(ctx, figmameta.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileKey:     "https://www.figma.com/design/ABC123/My-Design",
//	    NodeIDs:     "1:2,1:3",
//	    MaxDepth:    4,
//	})
//	if err != nil {
//	    log.Fatal(figmameta.UserMessage(err))
//	}
//	os.WriteFile(result.FileName, result.JSON, 0644)
//
// # Pruning
//
// Every node keeps only the fields listed by [filter.Allowlist]. The
// requested node is depth 0; nodes deeper than [Options.MaxDepth] are left
// out of their parent's children. Nodes Figma cannot resolve are reported in
// [Result.Skipped] and left out of the output.
//
// # Errors
//
// Run returns an [*Error] whose [Code] separates input validation failures
// (no request made), Figma API failures ([StatusCode] gives the HTTP status)
// and everything else. [UserMessage] turns any of them into the text shown
// to users.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. A *zap.SugaredLogger satisfies
// the interface.
package figmameta
