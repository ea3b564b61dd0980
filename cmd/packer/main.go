package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/shlex"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/build"
	"github.com/amitnovick/compilation-ex3-testers/internal/packer"
	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	src := flag.String("src", ".", "Source directory containing the ex3/ build root")
	ids := flag.String("ids", "", "Comma-separated submitter identifiers")
	out := flag.String("out", "", "Output archive path (default <ids>.tar.gz)")
	buildCmd := flag.String("build", "make", "Pre-flight build command")
	artifact := flag.String("artifact", "EX3", "Artifact the build must produce")
	timeout := flag.Duration("timeout", 2*time.Minute, "Pre-flight build timeout")
	flag.Parse()

	idList := splitIDs(*ids)
	if len(idList) == 0 {
		fmt.Fprintln(os.Stderr, "at least one id is required (-ids)")
		return 1
	}

	argv, err := shlex.Split(*buildCmd)
	if err != nil || len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "invalid build command: %v\n", err)
		return 1
	}

	outPath := *out
	if outPath == "" {
		outPath = strings.Join(idList, "_") + ".tar.gz"
	}

	p := packer.Packer{
		SourceDir: *src,
		IDs:       idList,
		Builder: build.Invoker{
			Command:      argv,
			ArtifactName: *artifact,
			Timeout:      *timeout,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Pack(ctx, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "packaging failed: %v\n", err)
		if e := appErr.GetError(err); e != nil {
			if buildLog, ok := e.Detail(build.LogDetailKey); ok {
				fmt.Fprintln(os.Stderr, "--- build log ---")
				fmt.Fprintln(os.Stderr, buildLog)
			}
		}
		return 1
	}
	fmt.Println(outPath)
	return 0
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
