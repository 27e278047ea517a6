// Command seqval validates sequencing manifests against versioned schemas.
//
// It checks manifests from the command line, lints schema documents,
// writes normalised copies of valid manifests and serves the same checks
// over HTTP. Run "seqval --help" for the list of commands.
package main

func main() {
	Execute()
}
