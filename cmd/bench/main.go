// bench - refgraph benchmark runner
//
// Encodes generated object graphs and reports, per case:
//   - text size and zstd-framed size
//   - encode and decode time per round
//   - whether the decoded graph re-encodes to the same text
//
// Output: CSV and markdown summary
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"time"

	"github.com/spf13/pflag"

	"github.com/Neumenon/refgraph/refgraph"
	"github.com/Neumenon/refgraph/stream"
)

// Node is a list or ring element.
type Node struct {
	Val  int    `refgraph:"val"`
	Name string `refgraph:"name"`
	Next *Node  `refgraph:"next"`
}

// Tree is a binary tree node. Shared subtrees become back-references.
type Tree struct {
	Weight float64 `refgraph:"w"`
	Left   *Tree   `refgraph:"l"`
	Right  *Tree   `refgraph:"r"`
}

type benchCase struct {
	Name  string
	Typ   reflect.Type
	Build func() any
}

type CaseResult struct {
	Name        string
	TextBytes   int
	FrameBytes  int
	SavedPct    float64
	Backrefs    int
	EncodeNanos int64
	DecodeNanos int64
	Stable      bool
}

func cases(size int) []benchCase {
	return []benchCase{
		{"chain", refgraph.TypeOf[Node](), func() any { return buildChain(size, false) }},
		{"ring", refgraph.TypeOf[Node](), func() any { return buildChain(size, true) }},
		{"tree", refgraph.TypeOf[Tree](), func() any { return buildTree(depthFor(size), false) }},
		{"shared-tree", refgraph.TypeOf[Tree](), func() any { return buildTree(depthFor(size), true) }},
	}
}

func buildChain(n int, ring bool) *Node {
	head := &Node{Val: 0, Name: "node-0"}
	cur := head
	for i := 1; i < n; i++ {
		cur.Next = &Node{Val: i, Name: fmt.Sprintf("node-%d", i)}
		cur = cur.Next
	}
	if ring {
		cur.Next = head
	}
	return head
}

// buildTree builds a tree of the given depth. With share set, each right
// child aliases its left sibling.
func buildTree(depth int, share bool) *Tree {
	t := &Tree{Weight: float64(depth) / 2}
	if depth == 0 {
		return t
	}
	t.Left = buildTree(depth-1, share)
	if share {
		t.Right = t.Left
	} else {
		t.Right = buildTree(depth-1, share)
	}
	return t
}

// depthFor picks a tree depth with roughly n nodes.
func depthFor(n int) int {
	d := 0
	for (1<<(d+1))-1 < n {
		d++
	}
	return d
}

func main() {
	fs := pflag.NewFlagSet("bench", pflag.ExitOnError)
	size := fs.Int("size", 1000, "approximate records per graph")
	rounds := fs.Int("rounds", 20, "encode/decode rounds per case")
	outDir := fs.String("out", ".", "directory for CSV and markdown output")
	fs.Parse(os.Args[1:])

	fmt.Fprintf(os.Stderr, "refgraph Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "=========================\n")
	fmt.Fprintf(os.Stderr, "Size: %d records, %d rounds\n\n", *size, *rounds)

	codec := refgraph.New()
	var results []CaseResult
	for _, c := range cases(*size) {
		r, err := runCase(codec, c, *rounds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: %v\n", c.Name, err)
			continue
		}
		results = append(results, r)
	}

	csvPath := filepath.Join(*outDir, "bench_results.csv")
	if csvFile, err := os.Create(csvPath); err == nil {
		writeCSV(csvFile, results)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := filepath.Join(*outDir, "BENCH.md")
	if mdFile, err := os.Create(mdPath); err == nil {
		writeMarkdown(mdFile, results, *size, *rounds)
		mdFile.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	var totalText, totalFrame int
	for _, r := range results {
		totalText += r.TextBytes
		totalFrame += r.FrameBytes
	}
	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases:        %d\n", len(results))
	fmt.Printf("Text total:   %d bytes\n", totalText)
	fmt.Printf("Frame total:  %d bytes (zstd)\n", totalFrame)
	if totalText > 0 {
		fmt.Printf("Saved:        %.1f%%\n", float64(totalText-totalFrame)/float64(totalText)*100)
	}
}

func runCase(codec *refgraph.Codec, c benchCase, rounds int) (CaseResult, error) {
	graph := c.Build()

	var text string
	var err error
	start := time.Now()
	for i := 0; i < rounds; i++ {
		if text, err = codec.Encode(graph, c.Typ); err != nil {
			return CaseResult{}, fmt.Errorf("encode: %w", err)
		}
	}
	encodeNanos := time.Since(start).Nanoseconds() / int64(rounds)

	var decoded any
	start = time.Now()
	for i := 0; i < rounds; i++ {
		if decoded, err = codec.Decode(text, c.Typ); err != nil {
			return CaseResult{}, fmt.Errorf("decode: %w", err)
		}
	}
	decodeNanos := time.Since(start).Nanoseconds() / int64(rounds)

	again, err := codec.Encode(decoded, c.Typ)
	if err != nil {
		return CaseResult{}, fmt.Errorf("re-encode: %w", err)
	}

	var framed bytes.Buffer
	w := stream.NewWriter(&framed, stream.WithCompression())
	defer w.Close()
	if err := w.WriteFrame(&stream.Frame{Seq: 1, Type: c.Name, Payload: []byte(text)}); err != nil {
		return CaseResult{}, fmt.Errorf("frame: %w", err)
	}

	r := CaseResult{
		Name:        c.Name,
		TextBytes:   len(text),
		FrameBytes:  framed.Len(),
		Backrefs:    countBackrefs(text),
		EncodeNanos: encodeNanos,
		DecodeNanos: decodeNanos,
		Stable:      again == text,
	}
	if r.TextBytes > 0 {
		r.SavedPct = float64(r.TextBytes-r.FrameBytes) / float64(r.TextBytes) * 100
	}
	return r, nil
}

// countBackrefs counts ~N~ tokens outside quoted text.
func countBackrefs(s string) int {
	n := 0
	inText := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inText = !inText
		case '~':
			if !inText {
				n++
			}
		}
	}
	return n / 2
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,text_bytes,frame_bytes,saved_pct,backrefs,encode_ns,decode_ns,stable")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%.1f,%d,%d,%d,%t\n",
			r.Name, r.TextBytes, r.FrameBytes, r.SavedPct, r.Backrefs,
			r.EncodeNanos, r.DecodeNanos, r.Stable)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, size, rounds int) {
	fmt.Fprintf(w, "# refgraph Benchmark Results\n\n")
	fmt.Fprintf(w, "**Date:** %s  \n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(w, "**Graph size:** ~%d records, %d rounds  \n\n", size, rounds)

	fmt.Fprintf(w, "## Results\n\n")
	fmt.Fprintf(w, "| Case | Text | Frame (zstd) | Saved | Back-refs | Encode | Decode | Stable |\n")
	fmt.Fprintf(w, "|------|------|--------------|-------|-----------|--------|--------|--------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %.1f%% | %d | %s | %s | %t |\n",
			r.Name, r.TextBytes, r.FrameBytes, r.SavedPct, r.Backrefs,
			time.Duration(r.EncodeNanos), time.Duration(r.DecodeNanos), r.Stable)
	}

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TextBytes < sorted[j].TextBytes
	})
	fmt.Fprintf(w, "\n## Smallest Text\n\n")
	for _, r := range sorted {
		fmt.Fprintf(w, "- %s: %d bytes\n", r.Name, r.TextBytes)
	}

	fmt.Fprintf(w, "\n## Methodology\n\n")
	fmt.Fprintf(w, "- **Text:** `Codec.Encode` output for the graph root\n")
	fmt.Fprintf(w, "- **Frame:** the text written as one zstd snapshot frame, header included\n")
	fmt.Fprintf(w, "- **Stable:** decoding then re-encoding yields identical text\n")
}
