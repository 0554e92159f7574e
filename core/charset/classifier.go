package charset

import "unicode/utf8"

// GB2312 二级汉字区在 GBK 中的字节范围
const (
	gbkLeadMin  = 0xB0
	gbkLeadMax  = 0xF7
	gbkTrailMin = 0xA1
	gbkTrailMax = 0xFE
)

// 统计时认定为中文的 Unicode 范围：基本汉字区及其补充区
const (
	cjkBasicMin = 0x4E00
	cjkBasicMax = 0x9FA5
	cjkSupplMin = 0x9FA6
	cjkSupplMax = 0x9FCB
)

// IsValidUTF8 判断字节内容是否为合法 UTF-8
func IsValidUTF8(data []byte) bool {
	return utf8.Valid(data)
}

// isChineseRune 判断字符是否落在统计范围内（不含扩展区、标点和全角字符）
func isChineseRune(r rune) bool {
	return (r >= cjkBasicMin && r <= cjkBasicMax) || (r >= cjkSupplMin && r <= cjkSupplMax)
}

// ContainsChineseUTF8 按 UTF-8 解码后判断是否包含中文字符
func ContainsChineseUTF8(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if isChineseRune(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

// CountChineseUTF8 按 UTF-8 解码后统计中文字符数量
func CountChineseUTF8(data []byte) int {
	count := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if isChineseRune(r) {
			count++
		}
		data = data[size:]
	}
	return count
}

// isGBKPair 判断 data[i], data[i+1] 是否构成二级汉字区字节对
func isGBKPair(data []byte, i int) bool {
	if i+1 >= len(data) {
		return false
	}
	lead, trail := data[i], data[i+1]
	return lead >= gbkLeadMin && lead <= gbkLeadMax &&
		trail >= gbkTrailMin && trail <= gbkTrailMax
}

// CountGBKPairs 统计原始字节中的 GBK 汉字字节对数量
//
// 命中后前进 2 字节，未命中前进 1 字节，与 MaxConsecutiveGBKPairs 的扫描方式一致，
// 因此已被计入的尾字节不会再作为下一对的首字节。
func CountGBKPairs(data []byte) int {
	count := 0
	for i := 0; i+1 < len(data); {
		if isGBKPair(data, i) {
			count++
			i += 2
			continue
		}
		i++
	}
	return count
}

// MaxConsecutiveGBKPairs 返回最长的连续 GBK 汉字字节对数量
func MaxConsecutiveGBKPairs(data []byte) int {
	longest, current := 0, 0
	for i := 0; i+1 < len(data); {
		if isGBKPair(data, i) {
			current++
			if current > longest {
				longest = current
			}
			i += 2
			continue
		}
		current = 0
		i++
	}
	return longest
}
