// Package parser loads AIML source files into engine.Category trees.
package parser

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tanglewood/golem/engine"
)

// LoadFile is the engine.Bot.LoadFunc implementation wired in by cmd/golem:
// it dispatches on extension (.aiml/.set/.map), or walks a directory non
// recursively loading every recognized file inside it, feeding everything
// it parses into loader.
func LoadFile(loader engine.Loader, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return loadOne(loader, path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := loadOne(loader, filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func loadOne(loader engine.Loader, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aiml", ".xml":
		return loadAIML(loader, path)
	case ".set":
		return loadSet(loader, path)
	case ".map":
		return loadMap(loader, path)
	default:
		return nil
	}
}

func loadAIML(loader engine.Loader, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cats, err := ParseReader(f)
	if err != nil {
		return fmt.Errorf("parser: %s: %w", path, err)
	}
	for _, c := range cats {
		loader.Insert(c)
	}
	return nil
}

func loadSet(loader engine.Loader, path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if values, _, ok := decodeJSONSetOrMap(path); ok {
		loader.AddSet(name, values)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var values []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		v := strings.TrimSpace(sc.Text())
		if v != "" {
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	loader.AddSet(name, values)
	return nil
}

func loadMap(loader engine.Loader, path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if _, entries, ok := decodeJSONSetOrMap(path); ok && entries != nil {
		loader.AddMap(name, entries)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entries := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			parts = strings.SplitN(line, "\t", 2)
		}
		if len(parts) == 2 {
			entries[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	loader.AddMap(name, entries)
	return nil
}

// rawCategory mirrors one <category> element before its <template> is
// lowered into an engine.Template tree. Pattern is also captured as raw
// inner XML (not plain character data) so a "<set>NAME</set>" reference
// nested inside it survives to expandPatternSets instead of being silently
// dropped by encoding/xml's string-field decoding.
type rawCategory struct {
	XMLName xml.Name `xml:"category"`
	Pattern struct {
		Inner string `xml:",innerxml"`
	} `xml:"pattern"`
	That  string `xml:"that"`
	Topic string `xml:"topic"`
	// innerxml capture lets template parsing reuse a single shared XML
	// decoder pass rather than round tripping tag names through
	// encoding/xml's struct-tag field matching.
	Template struct {
		Inner string `xml:",innerxml"`
	} `xml:"template"`
}

// patternSetRef matches a "<set>NAME</set>" reference inside pattern
// markup, case-insensitively and tolerant of surrounding whitespace.
var patternSetRef = regexp.MustCompile(`(?i)<set>\s*([^<]+?)\s*</set>`)

// xmlEntityReplacer undoes the handful of XML entities that survive in raw
// innerxml text, since that capture bypasses encoding/xml's usual
// character-data unescaping.
var xmlEntityReplacer = strings.NewReplacer(
	"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&",
)

// expandPatternSets rewrites every "<set>NAME</set>" reference in raw
// pattern markup to a SetRefPrefix-prefixed token with no internal
// whitespace, so it survives engine.Normalize as a single word the trie
// can route to its per-set edge instead of being split apart like any
// other punctuation-bearing text.
func expandPatternSets(raw string) string {
	replaced := patternSetRef.ReplaceAllStringFunc(raw, func(m string) string {
		sub := patternSetRef.FindStringSubmatch(m)
		name := strings.ToUpper(strings.Join(strings.Fields(sub[1]), "_"))
		return " " + engine.SetRefPrefix + name + " "
	})
	return xmlEntityReplacer.Replace(replaced)
}

type rawAIML struct {
	XMLName    xml.Name      `xml:"aiml"`
	Categories []rawCategory `xml:"category"`
}

// ParseFile opens and parses a single .aiml file.
func ParseFile(path string) ([]engine.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ParseReader(f)
}

// ParseReader decodes AIML content from r, building each category's
// template into an engine.Template tree at load time, so the evaluator
// never re-parses raw markup.
func ParseReader(r io.Reader) ([]engine.Category, error) {
	var doc rawAIML
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode XML: %w", err)
	}

	cats := make([]engine.Category, 0, len(doc.Categories))
	for i, raw := range doc.Categories {
		pattern := strings.TrimSpace(expandPatternSets(raw.Pattern.Inner))
		tmplSrc := strings.TrimSpace(raw.Template.Inner)
		if pattern == "" || tmplSrc == "" {
			continue
		}
		tmpl, err := ParseTemplate(tmplSrc)
		if err != nil {
			return nil, fmt.Errorf("category %d (%q): %w", i, pattern, err)
		}
		cats = append(cats, engine.Category{
			Pattern:  pattern,
			That:     strings.TrimSpace(raw.That),
			Topic:    strings.TrimSpace(raw.Topic),
			Template: tmpl,
		})
	}
	return cats, nil
}

// ParseTemplate decodes a <template> body's inner XML into an
// engine.ElementNode tree rooted at a synthetic TagTemplate element.
func ParseTemplate(innerXML string) (engine.Template, error) {
	dec := xml.NewDecoder(strings.NewReader("<template>" + innerXML + "</template>"))
	dec.Strict = false
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil, fmt.Errorf("parser: expected root <template> element")
	}
	return decodeElement(dec, start)
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (*engine.ElementNode, error) {
	name := strings.ToLower(start.Name.Local)
	node := &engine.ElementNode{
		Tag:   engine.ParseTagKind(name),
		Name:  name,
		Attrs: attrsOf(start),
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return node, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case xml.CharData:
			if text := string(t); text != "" {
				node.Children = append(node.Children, &engine.TextNode{Content: text})
			}
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, start.Name.Local) {
				return node, nil
			}
		}
	}
}

func attrsOf(start xml.StartElement) map[string]string {
	if len(start.Attr) == 0 {
		return nil
	}
	m := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		m[strings.ToLower(a.Name.Local)] = a.Value
	}
	return m
}

// decodeJSONSetOrMap handles .set/.map files authored as a JSON array or
// object instead of the plain line-oriented format.
func decodeJSONSetOrMap(path string) (values []string, entries map[string]string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, false
	}
	defer f.Close()
	dec := json.NewDecoder(f)

	var arr []string
	if err := dec.Decode(&arr); err == nil {
		return arr, nil, true
	}
	f.Seek(0, io.SeekStart)
	dec = json.NewDecoder(f)
	var obj map[string]string
	if err := dec.Decode(&obj); err == nil {
		return nil, obj, true
	}
	return nil, nil, false
}
