// Package epub packages a workspace's translated text as an EPUB 2.0 archive.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"novelweaver/models"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
   <rootfiles>
      <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
   </rootfiles>
</container>`

const styleCSS = `body { font-family: serif; line-height: 1.6; padding: 20px; }
h1 { text-align: center; color: #333; }
p { margin-bottom: 1em; text-indent: 1em; }
.cover-title { font-size: 2em; font-weight: bold; margin-bottom: 0.5em; }
.cover-author { font-size: 1.2em; font-style: italic; }
`

// Write renders the workspace as an EPUB into w. The mimetype entry is
// written first and stored uncompressed, as EPUB readers require.
func Write(w io.Writer, workspace models.Workspace) error {
	archive := zip.NewWriter(w)

	mimetype, err := archive.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("creating mimetype entry: %w", err)
	}
	if _, err := mimetype.Write([]byte("application/epub+zip")); err != nil {
		return fmt.Errorf("writing mimetype: %w", err)
	}

	entries := []struct {
		name    string
		content string
	}{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/style.css", styleCSS},
		{"OEBPS/content.xhtml", contentXHTML(workspace)},
		{"OEBPS/content.opf", contentOPF(workspace)},
		{"OEBPS/toc.ncx", tocNCX(workspace)},
	}
	for _, e := range entries {
		f, err := archive.Create(e.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", e.name, err)
		}
		if _, err := f.Write([]byte(e.content)); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("finalizing epub: %w", err)
	}
	return nil
}

// Filename derives the download name from the workspace title, with
// whitespace collapsed to underscores.
func Filename(workspace models.Workspace) string {
	name := strings.Join(strings.Fields(workspace.Name), "_")
	if name == "" {
		name = "untitled"
	}
	return name + ".epub"
}

func contentXHTML(workspace models.Workspace) string {
	var body strings.Builder
	if strings.TrimSpace(workspace.TranslatedText) == "" {
		body.WriteString("<p>No content translated yet.</p>")
	} else {
		for _, para := range strings.Split(workspace.TranslatedText, "\n") {
			body.WriteString("<p>")
			body.WriteString(escapeXML(para))
			body.WriteString("</p>")
		}
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="style.css"/>
</head>
<body>
  <h1>%s</h1>
  <div class="content">
    %s
  </div>
</body>
</html>`, escapeXML(workspace.Name), escapeXML(workspace.Name), body.String())
}

func contentOPF(workspace models.Workspace) string {
	author := workspace.Author
	if author == "" {
		author = "Unknown"
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" unique-identifier="BookID" version="2.0">
    <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
        <dc:title>%s</dc:title>
        <dc:creator opf:role="aut">%s</dc:creator>
        <dc:language>%s</dc:language>
        <dc:identifier id="BookID" opf:scheme="UUID">%s</dc:identifier>
    </metadata>
    <manifest>
        <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
        <item id="style" href="style.css" media-type="text/css"/>
        <item id="content" href="content.xhtml" media-type="application/xhtml+xml"/>
    </manifest>
    <spine toc="ncx">
        <itemref idref="content"/>
    </spine>
</package>`,
		escapeXML(workspace.Name), escapeXML(author),
		escapeXML(workspace.Config.TargetLang), escapeXML(workspace.ID))
}

func tocNCX(workspace models.Workspace) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN"
   "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd">
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
    <head>
        <meta name="dtb:uid" content="%s"/>
        <meta name="dtb:depth" content="1"/>
        <meta name="dtb:totalPageCount" content="0"/>
        <meta name="dtb:maxPageNumber" content="0"/>
    </head>
    <docTitle>
        <text>%s</text>
    </docTitle>
    <navMap>
        <navPoint id="navPoint-1" playOrder="1">
            <navLabel>
                <text>Start</text>
            </navLabel>
            <content src="content.xhtml"/>
        </navPoint>
    </navMap>
</ncx>`, escapeXML(workspace.ID), escapeXML(workspace.Name))
}

func escapeXML(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
