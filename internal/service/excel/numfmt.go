package excel

import "strings"

// dateNumFmtIDs 内置数字格式中表示日期/时间的编号（含中日韩区域格式）
var dateNumFmtIDs = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	45: {}, 46: {}, 47: {},
	50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

// isDateNumFmt 数值单元格的显示格式是否为日期/时间
func isDateNumFmt(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateFormatCode(*custom)
	}
	_, ok := dateNumFmtIDs[numFmt]
	return ok
}

// isDateFormatCode 自定义格式代码中是否含有日期/时间占位符 (y m d h s)。
// 引号内文本、转义字符、填充字符以及 [Red]、[$-409] 一类的方括号段会被跳过；
// [h]、[mm]、[ss] 这类经过时间仍算作时间格式
func isDateFormatCode(code string) bool {
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				return false
			}
			if isElapsedToken(code[i+1 : i+1+end]) {
				return true
			}
			i += end + 1
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

func isElapsedToken(s string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	return strings.Trim(s, string(s[0])) == "" && strings.ContainsAny(s[:1], "hms")
}
