package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// RomanizeChineseName renders a name as "Surname Given", e.g. 王小明 -> "Wang Xiaoming".
func RomanizeChineseName(chineseName string) string {
	syllables := pinyin.LazyConvert(chineseName, nil)
	if len(syllables) == 0 {
		return chineseName
	}

	surname := capitalize(syllables[0])
	given := capitalize(strings.Join(syllables[1:], ""))
	if given == "" {
		return surname
	}
	return surname + " " + given
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var digits = "0123456789"

// GenerateEmailFromChineseName builds a plausible mailbox name from the pinyin of a name.
func GenerateEmailFromChineseName(chineseName string, domainName string) string {
	local := strings.Join(pinyin.LazyConvert(chineseName, nil), ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + domainName
}

// GenerateRandomPhone returns an Australian-style mobile number.
func GenerateRandomPhone() string {
	return fmt.Sprintf("04%02d %03d %03d", rand.Intn(100), rand.Intn(1000), rand.Intn(1000))
}

var referenceLetters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateReferenceSuffix returns 6 random uppercase letters or digits.
func GenerateReferenceSuffix() string {
	suffix := make([]rune, 6)
	for i := range suffix {
		suffix[i] = referenceLetters[rand.Intn(len(referenceLetters))]
	}
	return string(suffix)
}
