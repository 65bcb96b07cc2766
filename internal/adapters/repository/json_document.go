package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/masterblog/core/internal/domain/entities"
)

const documentIndent = "    "

// postKeys lists the keys the store understands, in the order a new post is written.
var postKeys = []string{"id", "author", "title", "content", "likes"}

// postShape records how a post was laid out in the document: its key order
// and the values of keys the store does not understand. A post that never
// carried "likes" keeps it absent until it is liked.
type postShape struct {
	keys  []string
	extra map[string]json.RawMessage
}

// document maps post ids to the shape they had when the file was last read.
type document map[int]postShape

func decodeDocument(data []byte) ([]entities.Post, document, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, err
	}

	posts := make([]entities.Post, 0, len(raws))
	doc := make(document, len(raws))
	for i, raw := range raws {
		post, shape, err := decodePost(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("post %d: %w", i, err)
		}
		posts = append(posts, post)
		if _, seen := doc[post.ID]; !seen {
			doc[post.ID] = shape
		}
	}
	return posts, doc, nil
}

func decodePost(raw json.RawMessage) (entities.Post, postShape, error) {
	var (
		post  entities.Post
		shape postShape
	)

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return post, shape, err
	}
	if tok != json.Delim('{') {
		return post, shape, errors.New("post is not an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return post, shape, err
		}
		key := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return post, shape, err
		}
		if !hasKey(shape.keys, key) {
			shape.keys = append(shape.keys, key)
		}

		var target any
		switch key {
		case "id":
			target = &post.ID
		case "author":
			target = &post.Author
		case "title":
			target = &post.Title
		case "content":
			target = &post.Content
		case "likes":
			target = &post.Likes
		default:
			if shape.extra == nil {
				shape.extra = make(map[string]json.RawMessage)
			}
			shape.extra[key] = value
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return post, shape, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return post, shape, nil
}

// encodeDocument renders posts in the layout the file has always had:
// four-space indentation, ASCII-only output and no trailing newline.
func encodeDocument(posts []entities.Post, doc document) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, post := range posts {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := encodePost(&compact, post, doc[post.ID]); err != nil {
			return nil, fmt.Errorf("post %d: %w", post.ID, err)
		}
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", documentIndent); err != nil {
		return nil, err
	}
	return escapeNonASCII(out.Bytes()), nil
}

func encodePost(buf *bytes.Buffer, post entities.Post, shape postShape) error {
	keys := append([]string(nil), shape.keys...)
	for _, key := range postKeys {
		if hasKey(keys, key) || (key == "likes" && post.Likes == 0) {
			continue
		}
		keys = append(keys, key)
	}

	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')

		var value any
		switch key {
		case "id":
			value = post.ID
		case "author":
			value = post.Author
		case "title":
			value = post.Title
		case "content":
			value = post.Content
		case "likes":
			value = post.Likes
		default:
			buf.Write(shape.extra[key])
			continue
		}
		if err := encodeValue(buf, value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	return nil
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// escapeNonASCII rewrites every rune outside printable ASCII as a \u escape.
// Valid JSON only carries such runes inside strings.
func escapeNonASCII(data []byte) []byte {
	if !bytes.ContainsFunc(data, func(r rune) bool { return r >= utf8.RuneSelf-1 }) {
		return data
	}

	out := make([]byte, 0, len(data)+16)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		switch {
		case r < utf8.RuneSelf-1:
			out = append(out, byte(r))
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}
