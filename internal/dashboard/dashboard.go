// Package dashboard はタスク集合から表示用構造を導出する純粋な変換ロジックを提供する。
//
// このパッケージはI/Oも永続化も行わず、エラーも返さない。
// パース不能な期限を持つタスクはupcomingバケットの末尾に安定順で配置される
// （期限不正ポリシー: クラッシュさせず、将来のタスクとして扱う）。
package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// HeatmapCapacity は1日あたりのタスク容量の基準値。
// ヒートマップの割合はこの値に対する比率として算出される。
const HeatmapCapacity = 8

// Buckets はタスクの4分類を表す。
// 未完了タスクはoverdue/today/upcomingのいずれか1つに属し、
// 完了タスクは期限に関わらずcompletedに属する。
type Buckets struct {
	Overdue   []model.Task `json:"overdue"`
	Today     []model.Task `json:"today"`
	Upcoming  []model.Task `json:"upcoming"`
	Completed []model.Task `json:"completed"`
}

// sameDay は2つの時刻が同じ暦日かどうかを返す。
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfDay は指定時刻の暦日の0時を返す。
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Bucketize はタスク集合をnowを基準に4つのバケットに分類する。
//
//   - overdue: 期限がnowより過去、かつ期限の暦日が今日でないもの
//   - today: 期限の暦日が今日のもの（時刻が過ぎていても含む）
//   - upcoming: 期限の暦日が今日より後のもの、および期限がパース不能なもの
//   - completed: 状態がCOMPLETEDのもの（期限に関わらず）
//
// overdue/today/upcomingは期限昇順、completedは作成日時降順でソートされる。
// 同値の場合は元の相対順を保持する。パース不能な期限のタスクは
// upcomingの末尾に元の相対順のまま並ぶ。
func Bucketize(tasks []model.Task, now time.Time) Buckets {
	var b Buckets
	var invalidDue []model.Task
	today := startOfDay(now)

	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			b.Completed = append(b.Completed, task)
			continue
		}

		due, ok := task.DueTime()
		if !ok {
			invalidDue = append(invalidDue, task)
			continue
		}

		switch {
		case sameDay(due, now):
			b.Today = append(b.Today, task)
		case due.Before(now):
			b.Overdue = append(b.Overdue, task)
		case startOfDay(due).After(today):
			b.Upcoming = append(b.Upcoming, task)
		default:
			// 期限は未来だが暦日は今日(別タイムゾーン由来の境界ケース)
			b.Today = append(b.Today, task)
		}
	}

	sortByDueAsc(b.Overdue)
	sortByDueAsc(b.Today)
	sortByDueAsc(b.Upcoming)
	sort.SliceStable(b.Completed, func(i, j int) bool {
		return b.Completed[i].CreatedAt.After(b.Completed[j].CreatedAt)
	})

	// パース不能な期限のタスクは期限付きupcomingの後ろに安定順で付加する
	b.Upcoming = append(b.Upcoming, invalidDue...)

	return b
}

// sortByDueAsc はタスクを期限昇順で安定ソートする。
func sortByDueAsc(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, _ := tasks[i].DueTime()
		dj, _ := tasks[j].DueTime()
		return di.Before(dj)
	})
}

// Progress は今日が期限のタスクの完了率（0〜100の整数）を返す。
// 分母は今日が期限の全タスク（完了含む）、分子はそのうちCOMPLETEDのもの。
// 分母が0の場合は0を返す。四捨五入する（1/3→33、2/3→67）。
func Progress(tasks []model.Task, now time.Time) int {
	var total, completed int

	for _, task := range tasks {
		due, ok := task.DueTime()
		if !ok || !sameDay(due, now) {
			continue
		}
		total++
		if task.Status == model.StatusCompleted {
			completed++
		}
	}

	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Filter は検索クエリに一致するタスクのみを返す。
// タイトルまたは説明にクエリが大文字小文字を無視した部分文字列として
// 含まれれば一致する。空のクエリはすべてに一致する。
// バケット分類の前に適用されることを想定している。
func Filter(tasks []model.Task, query string) []model.Task {
	if query == "" {
		return tasks
	}

	q := strings.ToLower(query)
	var out []model.Task
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), q) ||
			strings.Contains(strings.ToLower(task.Description), q) {
			out = append(out, task)
		}
	}
	return out
}

// HeatmapDay はヒートマップの1日分を表す。
type HeatmapDay struct {
	Date    string `json:"date"` // "YYYY-MM-DD"
	Count   int    `json:"count"`
	Percent int    `json:"percent"` // 容量に対する割合。100でキャップ
}

// WeeklyHeatmap は今日で終わる7暦日分のタスク密度を古い日付順で返す。
// 各日のカウントは、作成日時または期限がその暦日に該当するタスクの数
// （両方が該当しても1回のみカウント）。割合はHeatmapCapacityに対する
// 比率で、100を上限とする。
func WeeklyHeatmap(tasks []model.Task, now time.Time) []HeatmapDay {
	days := make([]HeatmapDay, 0, 7)

	for offset := -6; offset <= 0; offset++ {
		day := startOfDay(now).AddDate(0, 0, offset)

		count := 0
		for _, task := range tasks {
			if sameDay(task.CreatedAt, day) {
				count++
				continue
			}
			if due, ok := task.DueTime(); ok && sameDay(due, day) {
				count++
			}
		}

		percent := int(math.Round(100 * float64(count) / float64(HeatmapCapacity)))
		if percent > 100 {
			percent = 100
		}

		days = append(days, HeatmapDay{
			Date:    day.Format("2006-01-02"),
			Count:   count,
			Percent: percent,
		})
	}

	return days
}
