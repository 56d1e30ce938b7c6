package wiki

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Block is one content block of a page. Only the text-bearing types the
// flattener understands are decoded.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *richTextHolder `json:"paragraph,omitempty"`
	Heading1         *richTextHolder `json:"heading_1,omitempty"`
	Heading2         *richTextHolder `json:"heading_2,omitempty"`
	Heading3         *richTextHolder `json:"heading_3,omitempty"`
	BulletedListItem *richTextHolder `json:"bulleted_list_item,omitempty"`
	NumberedListItem *richTextHolder `json:"numbered_list_item,omitempty"`
	ToDo             *todoHolder     `json:"to_do,omitempty"`
	Quote            *richTextHolder `json:"quote,omitempty"`
	Code             *codeHolder     `json:"code,omitempty"`
}

type richTextHolder struct {
	RichText []RichText `json:"rich_text"`
}

type todoHolder struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type codeHolder struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language"`
}

type blockPage struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// GetPageContent fetches every content block of a page, following the
// pagination cursor, and flattens the blocks to plain text.
func (c *Client) GetPageContent(ctx context.Context, pageID string) (string, error) {
	var blocks []Block
	cursor := ""
	for {
		path := "/blocks/" + pageID + "/children?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}

		var page blockPage
		if err := c.request(ctx, http.MethodGet, path, nil, &page); err != nil {
			return "", err
		}
		blocks = append(blocks, page.Results...)

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return flattenBlocks(blocks), nil
}

func flattenBlocks(blocks []Block) string {
	var lines []string
	for _, b := range blocks {
		switch b.Type {
		case "paragraph":
			lines = append(lines, holderText(b.Paragraph))
		case "heading_1":
			lines = append(lines, "# "+holderText(b.Heading1))
		case "heading_2":
			lines = append(lines, "## "+holderText(b.Heading2))
		case "heading_3":
			lines = append(lines, "### "+holderText(b.Heading3))
		case "bulleted_list_item":
			lines = append(lines, "- "+holderText(b.BulletedListItem))
		case "numbered_list_item":
			lines = append(lines, "1. "+holderText(b.NumberedListItem))
		case "to_do":
			if b.ToDo == nil {
				continue
			}
			box := "[ ]"
			if b.ToDo.Checked {
				box = "[x]"
			}
			lines = append(lines, box+" "+plainText(b.ToDo.RichText))
		case "quote":
			lines = append(lines, "> "+holderText(b.Quote))
		case "code":
			if b.Code == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("```%s\n%s\n```", b.Code.Language, plainText(b.Code.RichText)))
		}
	}
	return strings.Join(lines, "\n")
}

func holderText(h *richTextHolder) string {
	if h == nil {
		return ""
	}
	return plainText(h.RichText)
}

// paragraphBlocks converts text into one paragraph block per line, the shape
// the create and append endpoints expect.
func paragraphBlocks(content string) []map[string]any {
	var children []map[string]any
	for _, line := range strings.Split(content, "\n") {
		children = append(children, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []map[string]any{
					{"type": "text", "text": map[string]any{"content": line}},
				},
			},
		})
	}
	return children
}
