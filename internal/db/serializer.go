package db

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"ely.by/textures/internal/textures"
)

type TextureSerializer interface {
	Serialize(texture *Texture) ([]byte, error)
	Deserialize(value []byte) (*Texture, error)
}

func NewJsonSerializer() *JsonSerializer {
	return &JsonSerializer{
		parserPool: &fastjson.ParserPool{},
		arenaPool:  &fastjson.ArenaPool{},
	}
}

type JsonSerializer struct {
	parserPool *fastjson.ParserPool
	arenaPool  *fastjson.ArenaPool
}

// The Texture must stay free of tags, so the fields are mapped manually.
// Empty optional fields are omitted to keep the stored values small
func (s *JsonSerializer) Serialize(texture *Texture) ([]byte, error) {
	arena := s.arenaPool.Get()
	defer s.arenaPool.Put(arena)

	obj := arena.NewObject()
	obj.Set("uuid", arena.NewString(texture.UserUuid.String()))
	obj.Set("kind", arena.NewString(texture.Kind.String()))
	obj.Set("digest", arena.NewString(texture.Digest))
	obj.Set("url", arena.NewString(texture.Url))
	if texture.Metadata != nil && texture.Metadata.Model != "" {
		obj.Set("model", arena.NewString(texture.Metadata.Model))
	}

	if !texture.CreatedAt.IsZero() {
		obj.Set("createdAt", arena.NewNumberString(strconv.FormatInt(texture.CreatedAt.Unix(), 10)))
	}

	if !texture.UpdatedAt.IsZero() {
		obj.Set("updatedAt", arena.NewNumberString(strconv.FormatInt(texture.UpdatedAt.Unix(), 10)))
	}

	return obj.MarshalTo(nil), nil
}

func (s *JsonSerializer) Deserialize(value []byte) (*Texture, error) {
	parser := s.parserPool.Get()
	defer s.parserPool.Put(parser)
	v, err := parser.ParseBytes(value)
	if err != nil {
		return nil, err
	}

	userUuid, err := uuid.ParseBytes(v.GetStringBytes("uuid"))
	if err != nil {
		return nil, fmt.Errorf("invalid uuid: %w", err)
	}

	kind, err := textures.ParseKind(string(v.GetStringBytes("kind")))
	if err != nil {
		return nil, err
	}

	texture := &Texture{
		UserUuid: userUuid,
		Kind:     kind,
		Digest:   string(v.GetStringBytes("digest")),
		Url:      string(v.GetStringBytes("url")),
	}

	if model := v.GetStringBytes("model"); len(model) != 0 {
		texture.Metadata = &textures.Metadata{Model: string(model)}
	}

	if v.Exists("createdAt") {
		texture.CreatedAt = time.Unix(v.GetInt64("createdAt"), 0).UTC()
	}

	if v.Exists("updatedAt") {
		texture.UpdatedAt = time.Unix(v.GetInt64("updatedAt"), 0).UTC()
	}

	return texture, nil
}

func NewZlibEncoder(serializer TextureSerializer) *ZlibEncoder {
	return &ZlibEncoder{serializer}
}

type ZlibEncoder struct {
	serializer TextureSerializer
}

func (s *ZlibEncoder) Serialize(texture *Texture) ([]byte, error) {
	serialized, err := s.serializer.Serialize(texture)
	if err != nil {
		return nil, err
	}

	var buff bytes.Buffer
	writer := zlib.NewWriter(&buff)
	_, err = writer.Write(serialized)
	if err != nil {
		return nil, err
	}

	_ = writer.Close()

	return buff.Bytes(), nil
}

func (s *ZlibEncoder) Deserialize(value []byte) (*Texture, error) {
	buff := bytes.NewReader(value)
	reader, err := zlib.NewReader(buff)
	if err != nil {
		return nil, err
	}

	resultBuffer := new(bytes.Buffer)
	_, err = io.Copy(resultBuffer, reader)
	if err != nil {
		return nil, err
	}

	_ = reader.Close()

	return s.serializer.Deserialize(resultBuffer.Bytes())
}
