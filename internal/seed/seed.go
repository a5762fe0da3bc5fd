// Package seed carries the embedded reference catalog and mock accounts.
package seed

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"github.com/gosimple/slug"
	"github.com/vytor/codedrill/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed users.yaml
var usersYAML []byte

// AllTags is the pool generated problems draw their tags from.
var AllTags = []string{
	"数组", "哈希表", "双指针", "字符串", "栈", "递归", "链表",
	"动态规划", "贪心算法", "排序", "搜索", "树", "图", "位运算",
}

// User is a mock backend account. Password is compared in plaintext.
type User struct {
	ID        string `yaml:"id" json:"id"`
	Email     string `yaml:"email" json:"email"`
	Password  string `yaml:"password" json:"password"`
	StudentID string `yaml:"studentId" json:"studentId"`
	Name      string `yaml:"name" json:"name"`
}

type catalogFile struct {
	Problems []models.Problem `yaml:"problems"`
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// Problems decodes the embedded catalog as written, without random fill.
// Every call returns a fresh copy.
func Problems() ([]models.Problem, error) {
	var f catalogFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	for i := range f.Problems {
		p := &f.Problems[i]
		p.SchemaVersion = models.SchemaVersion
		if p.Slug == "" {
			p.Slug = Slug(p.ID, p.Title)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("embedded catalog: %w", err)
		}
	}
	return f.Problems, nil
}

// Catalog returns the embedded catalog with zero counters filled from rng.
func Catalog(rng *rand.Rand) ([]models.Problem, error) {
	problems, err := Problems()
	if err != nil {
		return nil, err
	}
	for i := range problems {
		FillCounters(&problems[i], rng)
	}
	return problems, nil
}

// FillCounters seeds submission counters that were never set: total in
// [100,1099], accepted in [50,549] and never above total.
func FillCounters(p *models.Problem, rng *rand.Rand) {
	if p.TotalSubmissions == 0 {
		p.TotalSubmissions = rng.IntN(1000) + 100
	}
	if p.AcceptedSubmissions == 0 {
		p.AcceptedSubmissions = rng.IntN(500) + 50
	}
	if p.AcceptedSubmissions > p.TotalSubmissions {
		p.AcceptedSubmissions = p.TotalSubmissions
	}
}

// Slug builds a URL-safe identifier that stays unique through the id prefix.
func Slug(id int64, title string) string {
	s := slug.Make(title)
	if s == "" {
		return fmt.Sprintf("problem-%d", id)
	}
	return fmt.Sprintf("%d-%s", id, s)
}

func Users() ([]User, error) {
	var f usersFile
	if err := yaml.Unmarshal(usersYAML, &f); err != nil {
		return nil, fmt.Errorf("decode embedded users: %w", err)
	}
	return f.Users, nil
}
