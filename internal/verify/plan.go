package verify

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/planmd/planmd/internal/frontmatter"
)

// requiredPlanKeys are the frontmatter keys every plan must declare.
var requiredPlanKeys = []string{
	"phase", "plan", "type", "wave",
	"depends_on", "files_modified", "autonomous", "must_haves",
}

var (
	taskBlockRe = regexp.MustCompile(`(?s)<task\b([^>]*)>(.*?)</task>`)
	taskAttrRe  = regexp.MustCompile(`(\w+)="([^"]*)"`)
)

// taskElements are the sub-elements inspected inside a task block.
var taskElements = []string{"name", "action", "verify", "done", "files"}

// elementRes holds one compiled matcher per task sub-element.
var elementRes = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(taskElements))
	for _, el := range taskElements {
		out[el] = regexp.MustCompile(`(?s)<` + el + `>(.*?)</` + el + `>`)
	}
	return out
}()

// PlanStructureResult reports the structural health of one plan document.
type PlanStructureResult struct {
	Result
	File      string `json:"file"`
	TaskCount int    `json:"task_count"`
}

// task is one parsed task block.
type task struct {
	attrs    map[string]string
	elements map[string]string
}

// PlanStructure validates the frontmatter keys and task blocks of the
// plan document at path.
func PlanStructure(path string) (*PlanStructureResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	content := string(data)
	tree := frontmatter.Extract(content)

	res := &PlanStructureResult{File: path}

	for _, key := range requiredPlanKeys {
		if _, ok := tree.Get(key); !ok {
			res.fail(fmt.Sprintf("missing required frontmatter key: %s", key))
		}
	}

	tasks := parseTasks(frontmatter.Body(content))
	res.TaskCount = len(tasks)
	checkTasks(res, tasks)

	checkWaveDeclaration(res, tree)
	checkCheckpointAutonomy(res, tree, tasks)

	res.finalize()
	return res, nil
}

// parseTasks extracts task blocks from the document body.
func parseTasks(body string) []task {
	var out []task
	for _, m := range taskBlockRe.FindAllStringSubmatch(body, -1) {
		t := task{attrs: map[string]string{}, elements: map[string]string{}}
		for _, am := range taskAttrRe.FindAllStringSubmatch(m[1], -1) {
			t.attrs[am[1]] = am[2]
		}
		for _, el := range taskElements {
			t.elements[el] = elementText(m[2], el)
		}
		out = append(out, t)
	}
	return out
}

// elementText returns the trimmed inner text of the first <el>...</el>
// inside a task body, or "".
func elementText(body, el string) string {
	if m := elementRes[el].FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// name returns the task's name from its attribute or name element.
func (t task) name() string {
	if n := t.attrs["name"]; n != "" {
		return n
	}
	return t.elements["name"]
}

// isCheckpoint reports whether the task is checkpoint-typed.
func (t task) isCheckpoint() bool {
	return strings.HasPrefix(strings.ToLower(t.attrs["type"]), "checkpoint")
}

// checkTasks verifies each task block carries a name and an action, and
// warns on missing verify/done/files elements.
func checkTasks(res *PlanStructureResult, tasks []task) {
	for i, t := range tasks {
		label := t.name()
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			res.fail(fmt.Sprintf("task %s has no name", label))
		}
		if t.elements["action"] == "" {
			res.fail(fmt.Sprintf("task %s has no action", label))
		}
		for _, el := range []string{"verify", "done", "files"} {
			if t.elements[el] == "" && !t.isCheckpoint() {
				res.warn(fmt.Sprintf("task %s has no %s element", label, el))
			}
		}
	}
}

// checkWaveDeclaration flags declared parallelism without a declared
// prerequisite: wave > 1 with an empty depends_on is suspicious, not
// necessarily wrong.
func checkWaveDeclaration(res *PlanStructureResult, tree *frontmatter.Map) {
	wave, err := strconv.Atoi(tree.GetScalar("wave"))
	if err != nil || wave <= 1 {
		return
	}
	if len(tree.GetList("depends_on")) == 0 {
		res.warn(fmt.Sprintf("wave %d declared with empty depends_on", wave))
	}
}

// checkCheckpointAutonomy flags a checkpoint task inside a plan that is
// not explicitly declared non-autonomous. A checkpoint means the plan
// cannot run unattended.
func checkCheckpointAutonomy(res *PlanStructureResult, tree *frontmatter.Map, tasks []task) {
	hasCheckpoint := false
	for _, t := range tasks {
		if t.isCheckpoint() {
			hasCheckpoint = true
			break
		}
	}
	if hasCheckpoint && tree.GetScalar("autonomous") != "false" {
		res.fail("plan contains a checkpoint task but autonomous is not false")
	}
}
