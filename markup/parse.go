package markup

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	voidElements = map[string]bool{"br": true, "img": true}

	charRefRx = regexp.MustCompile(`&(?:(amp|apos|gt|lt|nbsp|quot)|#(\d\d\d{0,4})|#x([a-f\d][a-f\d][a-f\d]{0,3}));`)
)

type openElement struct {
	name     string
	attrs    map[string]string
	children []Node
}

// Parse converts inline markup into node tree. Tag names are lower-cased, br
// and img as well as self-closing tags become void elements. Unbalanced end
// tags are ignored, elements left open at the end of input are closed.
func Parse(src string) ([]Node, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	stack := []*openElement{{}}

	closeTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, Element(top.name, top.attrs, top.children...))
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unable to tokenize markup: %w", err)
			}
			for len(stack) > 1 {
				closeTop()
			}
			return stack[0].children, nil
		case html.TextToken:
			cur := stack[len(stack)-1]
			cur.children = append(cur.children, splitText(string(z.Raw()))...)
		case html.StartTagToken:
			name, attrs := readTag(z)
			if voidElements[name] {
				cur := stack[len(stack)-1]
				cur.children = append(cur.children, VoidElement(name, attrs))
				continue
			}
			stack = append(stack, &openElement{name: name, attrs: attrs})
		case html.SelfClosingTagToken:
			name, attrs := readTag(z)
			cur := stack[len(stack)-1]
			cur.children = append(cur.children, VoidElement(name, attrs))
		case html.EndTagToken:
			tn, _ := z.TagName()
			name := string(tn)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name != name {
					continue
				}
				for len(stack) > i {
					closeTop()
				}
				break
			}
		}
	}
}

func readTag(z *html.Tokenizer) (string, map[string]string) {
	tn, more := z.TagName()
	name := string(tn)
	if !more {
		return name, nil
	}
	attrs := make(map[string]string)
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		attrs[string(k)] = string(v)
	}
	return name, attrs
}

// splitText breaks raw text into text and character reference nodes. Unknown
// references are kept as text.
func splitText(raw string) []Node {
	var nodes []Node
	last := 0
	for _, m := range charRefRx.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > last {
			nodes = append(nodes, Text(raw[last:m[0]]))
		}
		switch {
		case m[2] >= 0:
			nodes = append(nodes, Ref(NamedRef, raw[m[2]:m[3]]))
		case m[4] >= 0:
			nodes = append(nodes, Ref(DecimalRef, raw[m[4]:m[5]]))
		default:
			nodes = append(nodes, Ref(HexRef, raw[m[6]:m[7]]))
		}
		last = m[1]
	}
	if last < len(raw) {
		nodes = append(nodes, Text(raw[last:]))
	}
	return nodes
}
