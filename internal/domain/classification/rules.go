package classification

// StoreType is the sales channel a store belongs to
type StoreType string

const (
	TypeDepartment StoreType = "department"
	TypeDirect     StoreType = "direct"
	TypeDealer     StoreType = "dealer"
	TypeOutlet     StoreType = "outlet"
	TypeDutyFree   StoreType = "dutyfree"
	TypeOnline     StoreType = "online"
	TypeOther      StoreType = "other"
)

// RegionOther is the default region bucket
const RegionOther = "기타"

// Rule assigns Value to any name containing one of Tokens. Within a table
// the first matching rule wins.
type Rule struct {
	Tokens []string
	Value  string
}

// Rules is the full set of classification tables
type Rules struct {
	Type   []Rule
	Brand  []Rule
	Region []Rule
	Online []string
}

// DefaultRules are the store-name token tables used by the sales exports.
var DefaultRules = Rules{
	Type: []Rule{
		{Tokens: []string{"(직)"}, Value: string(TypeDirect)},
		{Tokens: []string{"(대-위)"}, Value: string(TypeDealer)},
		{Tokens: []string{"(제휴몰)"}, Value: string(TypeOnline)},
		{Tokens: []string{"(상-위)", "아울렛"}, Value: string(TypeOutlet)},
		{Tokens: []string{"면세"}, Value: string(TypeDutyFree)},
		{Tokens: []string{"롯데", "현대", "신세계", "갤러리아", "AK"}, Value: string(TypeDepartment)},
	},
	Brand: []Rule{
		{Tokens: []string{"롯데"}, Value: "롯데"},
		{Tokens: []string{"현대"}, Value: "현대"},
		{Tokens: []string{"신세계"}, Value: "신세계"},
		{Tokens: []string{"갤러리아"}, Value: "갤러리아"},
		{Tokens: []string{"AK"}, Value: "AK"},
	},
	Region: []Rule{
		// duty free counters are not attributed to a region
		{Tokens: []string{"면세"}, Value: RegionOther},
		{Tokens: []string{
			"강남", "본점", "명동", "잠실", "영등포", "성수", "홍대", "가로수길", "한남",
			"청량리", "노원", "신촌", "천호", "미아", "동대문", "왕십리", "사옥", "아이파크용산",
			"건대", "더현대서울", "두타", "신림", "마리오", "NC강서", "가산", "송파", "가든5",
		}, Value: "서울"},
		{Tokens: []string{
			"판교", "분당", "일산", "평촌", "수원", "안양", "성남", "용인", "하남", "고양",
			"동탄", "광교", "킨텍스", "중동", "안산", "광명", "김포", "부천", "시흥", "오산",
			"평택", "화성", "안성", "구리", "남양주", "의정부", "파주", "양주", "포천", "가평",
			"연천", "퍼스트빌리지", "신세계경기", "의왕", "여주", "기흥", "이천", "콜렉티드",
		}, Value: "경기"},
		{Tokens: []string{"인천", "부평"}, Value: "인천"},
		{Tokens: []string{
			"부산", "울산", "창원", "김해", "마산", "진주", "거제", "통영", "사천", "밀양",
			"양산", "동래", "센텀", "광복", "기장",
		}, Value: "부산/경남"},
		{Tokens: []string{
			"대구", "경산", "포항", "구미", "안동", "경주", "영주", "상주", "칠곡", "성서",
			"동성로", "상인", "봉무", "율하",
		}, Value: "대구/경북"},
		{Tokens: []string{
			"광주", "전주", "순천", "목포", "여수", "익산", "나주", "정읍", "남원", "해남",
			"여천", "송천", "수완", "광양", "군산", "충장로",
		}, Value: "광주/전라"},
		{Tokens: []string{
			"대전", "청주", "천안", "충청", "세종", "아산", "당진", "서산", "홍성", "보령",
			"제천", "충주", "은행", "갤러리아센터시티", "부여",
		}, Value: "대전/충청"},
		{Tokens: []string{"춘천", "강릉", "속초", "원주", "동해", "태백"}, Value: "강원"},
		{Tokens: []string{"제주", "서귀포"}, Value: "제주"},
	},
	Online: []string{"(제휴몰)", "온라인", "쇼피파이"},
}

var typeLabels = map[StoreType]string{
	TypeDepartment: "백화점",
	TypeDirect:     "직영점",
	TypeDealer:     "대리점",
	TypeOutlet:     "아울렛",
	TypeDutyFree:   "면세점",
	TypeOnline:     "제휴몰",
	TypeOther:      "기타",
}

// TypeLabel returns the Korean display label for a store type
func TypeLabel(t StoreType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return typeLabels[TypeOther]
}

var regionOrder = map[string]int{
	"서울":    1,
	"경기":    2,
	"인천":    3,
	"부산/경남": 4,
	"대구/경북": 5,
	"광주/전라": 6,
	"대전/충청": 7,
	"강원":    8,
	"제주":    9,
	"기타":    10,
}

// RegionOrder returns the display position of a region. Unknown regions
// sort last.
func RegionOrder(region string) int {
	if o, ok := regionOrder[region]; ok {
		return o
	}
	return 100
}
