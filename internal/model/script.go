package model

// Script 是 AI 生成的微学习脚本：一段摘要加若干张幻灯片。
type Script struct {
	Summary string  `json:"summary"`
	Slides  []Slide `json:"slides"`
}

// Slide 是脚本中的一张幻灯片。
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
