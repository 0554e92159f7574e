package charset

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrInvalidGBK 字节序列无法按 GBK 码表严格解码
var ErrInvalidGBK = errors.New("invalid GBK byte sequence")

// DecodeGBK 将 GBK 字节严格解码为 UTF-8
//
// x/text 的解码器遇到非法序列时会写入 U+FFFD 而不是报错，
// GBK 码表中没有映射到 U+FFFD 的字符，所以输出中出现 U+FFFD 即视为解码失败。
func DecodeGBK(data []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, ErrInvalidGBK
	}
	return decoded, nil
}

// EncodeGBK 将 UTF-8 文本编码为 GBK
func EncodeGBK(data []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewEncoder())
	return io.ReadAll(reader)
}
