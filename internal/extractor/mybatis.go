package extractor

import (
	"encoding/xml"
	"os"
	"strings"

	"javamap/internal/facts"
)

// mapperXML mirrors the MyBatis mapper document shape. Only statement
// elements are read; <sql> fragments and result maps carry no table
// references of their own.
type mapperXML struct {
	XMLName   xml.Name       `xml:"mapper"`
	Namespace string         `xml:"namespace,attr"`
	Selects   []statementXML `xml:"select"`
	Inserts   []statementXML `xml:"insert"`
	Updates   []statementXML `xml:"update"`
	Deletes   []statementXML `xml:"delete"`
}

type statementXML struct {
	ID   string `xml:"id,attr"`
	Body string `xml:",innerxml"`
}

// xmlExtractor parses MyBatis mapper XML files into fact records.
type xmlExtractor struct {
	project string
}

func newXMLExtractor(project string) *xmlExtractor {
	return &xmlExtractor{project: project}
}

// ExtractFile parses one XML file. Documents with a different root element
// yield no facts and no error; unreadable or malformed XML returns an error
// for the run report.
func (e *xmlExtractor) ExtractFile(path, relPath string) ([]facts.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(data)
}

// Extract parses mapper XML content.
func (e *xmlExtractor) Extract(data []byte) ([]facts.Fact, error) {
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.XMLName.Local != "mapper" {
		return nil, nil
	}

	var doc mapperXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	namespace := strings.TrimSpace(doc.Namespace)

	var out []facts.Fact
	add := func(kind string, stmts []statementXML) {
		for _, s := range stmts {
			stmt := facts.SqlStatementFact{
				Project:   e.project,
				Namespace: namespace,
				ID:        strings.TrimSpace(s.ID),
				Kind:      kind,
				SQL:       flattenSQL(s.Body),
			}
			// A mapper without a namespace still emits; the writer drops
			// the record with a merge key error so the report shows it.
			out = append(out, stmt)
			out = append(out, tableRefFacts(stmt)...)
		}
	}

	add(facts.SqlSelect, doc.Selects)
	add(facts.SqlInsert, doc.Inserts)
	add(facts.SqlUpdate, doc.Updates)
	add(facts.SqlDelete, doc.Deletes)

	return out, nil
}

// flattenSQL reduces a statement body to plain SQL text: dynamic tags are
// dropped with their text content kept, comments removed, CDATA unwrapped,
// entities decoded, whitespace collapsed.
func flattenSQL(body string) string {
	var out strings.Builder
	var text strings.Builder

	flushText := func() {
		out.WriteString(xmlUnescape(text.String()))
		text.Reset()
	}

	i := 0
	for i < len(body) {
		switch {
		case strings.HasPrefix(body[i:], "<![CDATA["):
			flushText()
			rest := body[i+9:]
			end := strings.Index(rest, "]]>")
			if end < 0 {
				out.WriteString(rest)
				i = len(body)
				continue
			}
			out.WriteString(rest[:end])
			i += 9 + end + 3
		case strings.HasPrefix(body[i:], "<!--"):
			flushText()
			out.WriteByte(' ')
			end := strings.Index(body[i+4:], "-->")
			if end < 0 {
				i = len(body)
				continue
			}
			i += 4 + end + 3
		case body[i] == '<':
			flushText()
			// A tag boundary acts as whitespace between SQL fragments
			out.WriteByte(' ')
			end := strings.IndexByte(body[i:], '>')
			if end < 0 {
				i = len(body)
				continue
			}
			i += end + 1
		default:
			text.WriteByte(body[i])
			i++
		}
	}
	flushText()

	return strings.Join(strings.Fields(out.String()), " ")
}

// xmlUnescape decodes the predefined XML entities. &amp; is listed first so
// double-escaped sequences stay literal after the single pass.
var xmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func xmlUnescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return xmlUnescaper.Replace(s)
}
