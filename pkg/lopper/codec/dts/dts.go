// Package dts implements the textual System Device Tree Source
// front-end: a reader that parses the classic brace-and-semicolon
// node/property syntax into a lopper.Tree, and a writer that renders
// one back out. The writer optionally emits "--enhanced" comments
// recording a node's label set and each property's type tag, written
// directly as "//" lines in the DTS text.
package dts

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// Read parses DTS-syntax source from r into a tree.
func Read(r io.Reader) (*lopper.Tree, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	t := lopper.NewTree()
	stack := []*lopper.Node{t.Root}
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "/dts-v1/") || strings.HasPrefix(line, "/plugin/"):
			continue
		case line == "};":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case strings.HasSuffix(line, "{"):
			header := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			label, name := splitLabel(header)
			name = strings.TrimSuffix(name, ":")
			if name == "/" {
				if label != "" {
					stack[len(stack)-1].AddLabel(label)
				}
				continue
			}
			n := lopper.NewNode(name)
			if label != "" {
				n.AddLabel(label)
			}
			parent := stack[len(stack)-1]
			if err := t.Add(parent.AbsPath()+"/"+name, n); err != nil {
				return nil, lopper.NewError(lopper.ParseFailure, fmt.Sprintf("line %d", lineNo), err.Error(), err)
			}
			stack = append(stack, n)
		case strings.HasSuffix(line, ";"):
			body := strings.TrimSuffix(line, ";")
			name, val, err := parseProperty(body)
			if err != nil {
				return nil, lopper.NewError(lopper.ParseFailure, fmt.Sprintf("line %d", lineNo), err.Error(), err)
			}
			stack[len(stack)-1].SetProperty(name, val)
		default:
			return nil, lopper.NewError(lopper.ParseFailure, fmt.Sprintf("line %d", lineNo), "unrecognized dts line: "+line, nil)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, lopper.NewError(lopper.ParseFailure, "", "scanning dts source: "+err.Error(), err)
	}
	if err := t.Sync(); err != nil {
		return nil, err
	}
	return t, nil
}

// splitLabel splits "label: name" into (label, name); returns ("",
// header) when there's no label.
func splitLabel(header string) (string, string) {
	if idx := strings.Index(header, ":"); idx >= 0 {
		return strings.TrimSpace(header[:idx]), strings.TrimSpace(header[idx+1:])
	}
	return "", header
}

// parseProperty decodes one "name" | "name = value" DTS statement.
func parseProperty(body string) (string, lopper.Value, error) {
	eq := strings.Index(body, "=")
	if eq < 0 {
		return strings.TrimSpace(body), lopper.NewEmptyValue(), nil
	}
	name := strings.TrimSpace(body[:eq])
	raw := strings.TrimSpace(body[eq+1:])
	return name, lopper.ParseLiteral(raw), nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	return line
}

// Write renders t as DTS source, optionally annotating each node and
// property with an "--enhanced" comment (its original document
// position isn't tracked post-transform, so the enhanced form instead
// records the node's labels and each property's type tag).
func Write(w io.Writer, t *lopper.Tree, enhanced bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "/dts-v1/;")
	fmt.Fprintln(bw)
	if err := writeNode(bw, t.Root, 0, enhanced); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *lopper.Node, depth int, enhanced bool) error {
	indent := strings.Repeat("\t", depth)
	header := n.Name()
	if header == "" {
		header = "/"
	}
	if enhanced && len(n.Labels()) > 0 {
		fmt.Fprintf(w, "%s// labels: %s\n", indent, strings.Join(n.Labels(), ", "))
	}
	if len(n.Labels()) > 0 && depth > 0 {
		fmt.Fprintf(w, "%s%s: %s {\n", indent, n.Labels()[0], header)
	} else {
		fmt.Fprintf(w, "%s%s {\n", indent, header)
	}

	for _, p := range n.Properties() {
		if enhanced {
			fmt.Fprintf(w, "%s\t// type: %s\n", indent, p.Value.Type())
		}
		writeProperty(w, indent+"\t", p)
	}
	for _, c := range n.Children() {
		if err := writeNode(w, c, depth+1, enhanced); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%s};\n", indent)
	return nil
}

func writeProperty(w *bufio.Writer, indent string, p *lopper.Property) {
	if p.Value.IsEmpty() {
		fmt.Fprintf(w, "%s%s;\n", indent, p.Name)
		return
	}
	switch p.Value.Type() {
	case lopper.TypeString:
		s, _ := p.Value.AsString()
		fmt.Fprintf(w, "%s%s = %q;\n", indent, p.Name, s)
	case lopper.TypeU32:
		v, _ := p.Value.AsU32()
		fmt.Fprintf(w, "%s%s = <%d>;\n", indent, p.Name, v)
	case lopper.TypeU32List, lopper.TypePhandleList:
		cells := make([]string, 0, len(p.Value.List()))
		for _, item := range p.Value.List() {
			cells = append(cells, fmt.Sprintf("%v", item))
		}
		fmt.Fprintf(w, "%s%s = <%s>;\n", indent, p.Name, strings.Join(cells, " "))
	case lopper.TypeStringList:
		strs := make([]string, 0, len(p.Value.List()))
		for _, item := range p.Value.List() {
			strs = append(strs, strconv.Quote(fmt.Sprintf("%v", item)))
		}
		fmt.Fprintf(w, "%s%s = %s;\n", indent, p.Name, strings.Join(strs, ", "))
	default:
		fmt.Fprintf(w, "%s%s = %q;\n", indent, p.Name, p.Value.String())
	}
}
