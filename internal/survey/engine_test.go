package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walker drives an engine the way the gateway does: merge after every
// accepted answer, reposition on back.
type walker struct {
	t       *testing.T
	e       *Engine
	step    Step
	answers Answers
}

func newWalker(t *testing.T) *walker {
	t.Helper()
	e := NewEngine()
	w := &walker{t: t, e: e, answers: Answers{}}
	res := e.Bind(Subject{UniqueID: "17", Fullname: "Ali Valiyev", GroupName: "101", Phone: "+998901112233"})
	w.apply(res)
	return w
}

func (w *walker) apply(res Result) {
	w.answers = w.answers.Merge(res.Merge)
	w.step = res.Step
}

func (w *walker) send(in Input) Result {
	w.t.Helper()
	res, err := w.e.Handle(w.step, w.answers, Answer(in))
	require.NoError(w.t, err, "step %s", w.step)
	w.apply(res)
	return res
}

func (w *walker) text(s string) Result { return w.send(Text(s)) }

func (w *walker) pick(c string) Result { return w.send(Pick(c)) }

func (w *walker) expect(s Step) {
	w.t.Helper()
	require.Equal(w.t, s, w.step)
}

func (w *walker) goBack() Result {
	w.t.Helper()
	res, err := w.e.Handle(w.step, w.answers, Back(StepNone))
	require.NoError(w.t, err)
	w.apply(res)
	return res
}

// prefix answers everything up to q14_father_alive.
func (w *walker) prefix() {
	w.text("+998901234567")
	w.text("Toshkent, Chilonzor")
	w.send(Location(41.2995, 69.2401))
	w.text("Maktab 12")
	w.text("AB1234567")
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick(CodeYes)
	w.pick(CodeNo)
	w.pick(CodeYes)
	w.expect(StepFatherAlive)
}

// suffix answers from q22_working to completion.
func (w *walker) suffix() {
	w.expect(StepWorking)
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.expect(StepCompleted)
}

func TestGraphValidates(t *testing.T) {
	e := NewEngine()
	if err := e.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, s := range Steps() {
		if e.Node(s) == nil {
			t.Fatalf("missing node %s", s)
		}
	}
}

func TestValidateRejectsMissingDefault(t *testing.T) {
	nodes := Graph()
	for _, n := range nodes {
		if n.Step == StepWorking {
			n.Forward = n.Forward[:1]
		}
	}
	_, err := NewEngineFrom(nodes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q22_working")
}

func TestValidateRejectsMissingNode(t *testing.T) {
	nodes := Graph()
	_, err := NewEngineFrom(nodes[:len(nodes)-1])
	require.Error(t, err)
}

func TestScenarioFatherDeceased(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeNo)
	w.expect(StepMotherAlive)
	assert.Equal(t, "", w.answers[FieldFatherName])
	assert.Equal(t, "", w.answers[FieldFatherPhone])

	w.pick(CodeYes)
	w.text("Malika")
	w.text("+998907654321")
	w.expect(StepLivingType)
	assert.Equal(t, "", w.answers[FieldParentsTogether])

	w.pick("home")
	w.suffix()
	rec := BuildRecord(5, w.answers)
	assert.Equal(t, "", rec.FatherName)
	assert.Equal(t, "", rec.FatherPhone)
	assert.Equal(t, NoValue, rec.FatherAlive)
}

func TestScenarioMotherDeceasedFatherAlive(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeYes)
	w.text("Vali")
	w.text("+998900000001")
	w.expect(StepMotherAlive)
	w.pick(CodeNo)
	w.expect(StepParentsTogether)
	assert.Equal(t, "", w.answers[FieldMotherName])
	assert.Equal(t, "", w.answers[FieldMotherPhone])
}

func TestScenarioBothDeceased(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.expect(StepLivingType)
	assert.Equal(t, "", w.answers[FieldParentsTogether])
	_, present := w.answers[FieldParentsTogether]
	assert.True(t, present)
}

func TestScenarioDormitory(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick("ttj")
	w.expect(StepDormitory)
	w.pick("kuaf")
	w.expect(StepWorking)
	assert.Equal(t, "KUAF TTJ dan", w.answers[FieldTTJLocation])
	for _, f := range []string{FieldRentAddress, FieldRentLocation, FieldRentOwner} {
		v, ok := w.answers[f]
		assert.True(t, ok, f)
		assert.Equal(t, "", v, f)
	}
	assert.Equal(t, StepDormitory, w.e.BackTarget(StepWorking, w.answers))
}

func TestScenarioNoAchievements(t *testing.T) {
	w := newWalker(t)
	w.text("+998901234567")
	w.text("addr")
	w.send(Text(SkipLabel))
	w.text("school")
	w.text("doc")
	w.expect(StepAchievements)
	res := w.pick(CodeNo)
	assert.Equal(t, StepCertificate, res.Step)
	assert.Equal(t, HintEdit, res.Hint)
	assert.Equal(t, "", w.answers[FieldAchievements])
	assert.Equal(t, NoValue, w.answers[FieldHasAchievements])
	assert.Equal(t, "", w.answers[FieldPermanentLocation])
}

func TestScenarioNoSocialChannels(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick("relatives")
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.pick(CodeNo)
	w.expect(StepSocialChannels)
	res := w.pick(CodeNo)
	assert.True(t, res.Completed)
	assert.Equal(t, StepCompleted, res.Step)
	assert.Equal(t, "", w.answers[FieldSocialLinks])
}

func TestRentPathClearsDormitory(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeYes)
	w.text("Vali")
	w.text("+998900000001")
	w.pick(CodeYes)
	w.text("Malika")
	w.text("+998900000002")
	w.expect(StepParentsTogether)
	w.pick(CodeYes)
	w.pick("rent")
	w.expect(StepRentAddress)
	assert.Equal(t, "", w.answers[FieldTTJLocation])
	w.text("Yunusobod 4")
	w.expect(StepRentLocation)
	w.send(Location(41.36, 69.28))
	assert.Equal(t, "41.36,69.28", w.answers[FieldRentLocation])
	w.text("Karimov")
	w.expect(StepWorking)
	assert.Equal(t, StepRentOwner, w.e.BackTarget(StepWorking, w.answers))
	w.pick(CodeYes)
	w.text("Zavod")
	w.expect(StepMarried)
	assert.Equal(t, StepWorkplace, w.e.BackTarget(StepMarried, w.answers))
}

func TestEveryPathProducesCompleteRecord(t *testing.T) {
	type path struct {
		father, mother, achievements, cert, grant, working, social bool
		living                                                     string
	}
	var paths []path
	for _, living := range []string{"home", "ttj", "rent", "relatives"} {
		for mask := 0; mask < 1<<7; mask++ {
			paths = append(paths, path{
				father:       mask&1 != 0,
				mother:       mask&2 != 0,
				achievements: mask&4 != 0,
				cert:         mask&8 != 0,
				grant:        mask&16 != 0,
				working:      mask&32 != 0,
				social:       mask&64 != 0,
				living:       living,
			})
		}
	}
	yn := func(b bool) string {
		if b {
			return CodeYes
		}
		return CodeNo
	}
	for _, p := range paths {
		w := newWalker(t)
		w.text("phone")
		w.text("addr")
		w.send(Location(1, 2))
		w.text("edu")
		w.text("doc")
		w.pick(yn(p.achievements))
		if p.achievements {
			w.text("olympiad")
		}
		w.pick(yn(p.cert))
		if p.cert {
			w.pick("ielts")
			w.text("7.5")
		}
		w.pick(yn(p.grant))
		if p.grant {
			w.text("grant")
		}
		w.pick(CodeNo)
		w.pick(CodeNo)
		w.pick(CodeNo)
		w.pick(yn(p.father))
		if p.father {
			w.text("f")
			w.text("fp")
		}
		w.pick(yn(p.mother))
		if p.mother {
			w.text("m")
			w.text("mp")
		}
		if p.father {
			w.expect(StepParentsTogether)
			w.pick(CodeYes)
		}
		w.expect(StepLivingType)
		w.pick(p.living)
		switch p.living {
		case "ttj":
			w.pick("jevachi")
		case "rent":
			w.text("ra")
			w.send(Text(SkipLabel))
			w.text("ro")
		}
		w.pick(yn(p.working))
		if p.working {
			w.text("job")
		}
		w.pick(CodeNo)
		w.pick(CodeNo)
		w.pick(yn(p.social))
		if p.social {
			w.text("@me")
		}
		w.expect(StepCompleted)

		for _, f := range RecordFields {
			if _, ok := w.answers[f]; !ok {
				t.Fatalf("path %+v: field %s never written", p, f)
			}
		}
		rec := BuildRecord(1, w.answers)
		if !p.cert && (rec.CertificateType != "" || rec.CertificateDetails != "") {
			t.Fatalf("path %+v: certificate fields not elided", p)
		}
		if p.cert && rec.CertificateType != "IELTS" {
			t.Fatalf("path %+v: certificate type %q", p, rec.CertificateType)
		}
		if !p.father && !p.mother && rec.ParentsTogether != "" {
			t.Fatalf("path %+v: parents_together %q", p, rec.ParentsTogether)
		}
	}
}

func TestBackTargets(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		step    Step
		answers Answers
		want    Step
	}{
		{StepPhone, nil, StepSearch},
		{StepMotherAlive, Answers{FieldFatherAlive: YesValue}, StepFatherPhone},
		{StepMotherAlive, Answers{FieldFatherAlive: NoValue}, StepFatherAlive},
		{StepParentsTogether, Answers{FieldMotherAlive: YesValue}, StepMotherPhone},
		{StepParentsTogether, Answers{FieldMotherAlive: NoValue}, StepMotherAlive},
		{StepLivingType, Answers{FieldFatherAlive: YesValue, FieldMotherAlive: NoValue}, StepParentsTogether},
		{StepLivingType, Answers{FieldFatherAlive: NoValue, FieldMotherAlive: YesValue}, StepMotherPhone},
		{StepLivingType, Answers{FieldFatherAlive: NoValue, FieldMotherAlive: NoValue}, StepMotherAlive},
		{StepWorking, Answers{FieldLivingType: LivingRent}, StepRentOwner},
		{StepWorking, Answers{FieldLivingType: LivingTTJ}, StepDormitory},
		{StepWorking, Answers{FieldLivingType: LivingHome}, StepLivingType},
		{StepMarried, Answers{FieldIsWorking: YesValue}, StepWorkplace},
		{StepMarried, Answers{FieldIsWorking: NoValue}, StepWorking},
		{StepCertificateDetails, nil, StepCertificateType},
		{StepSearch, nil, StepNone},
	}
	for _, tc := range cases {
		if got := e.BackTarget(tc.step, tc.answers); got != tc.want {
			t.Fatalf("BackTarget(%s) = %s, want %s", tc.step, got, tc.want)
		}
	}
}

func TestGoBackHints(t *testing.T) {
	e := NewEngine()
	for _, s := range []Step{StepLocation, StepRentLocation} {
		_, hint, err := e.GoBack(s, nil)
		require.NoError(t, err)
		assert.Equal(t, HintResend, hint, s.String())
	}
	_, hint, err := e.GoBack(StepGrant, nil)
	require.NoError(t, err)
	assert.Equal(t, HintEdit, hint)

	_, _, err = e.GoBack(StepCompleted, nil)
	require.Error(t, err)
	_, _, err = e.GoBack(StepNone, nil)
	require.Error(t, err)
}

func TestGoBackKeepsAnswers(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeYes)
	w.text("Vali")
	w.text("+998900000001")
	w.expect(StepMotherAlive)
	before := w.answers.Clone()

	res := w.goBack()
	assert.True(t, res.Back)
	assert.Nil(t, res.Merge)
	w.expect(StepFatherPhone)
	assert.Equal(t, before, w.answers)
}

func TestBackThenForwardIsIdempotent(t *testing.T) {
	w := newWalker(t)
	w.prefix()
	w.pick(CodeNo)
	w.pick(CodeYes)
	w.text("Malika")
	w.text("+998907654321")
	w.expect(StepLivingType)
	wantStep, wantAnswers := w.step, w.answers.Clone()

	w.goBack()
	w.expect(StepMotherPhone)
	w.text("+998907654321")
	assert.Equal(t, wantStep, w.step)
	assert.Equal(t, wantAnswers, w.answers)
}

func TestLocationBackLabelNavigates(t *testing.T) {
	w := newWalker(t)
	w.text("phone")
	w.text("addr")
	w.expect(StepLocation)
	before := w.answers.Clone()

	res := w.send(Text(BackLabel))
	assert.True(t, res.Back)
	assert.Equal(t, HintSend, res.Hint)
	w.expect(StepAddress)
	assert.Equal(t, before, w.answers)
	_, stored := w.answers[FieldPermanentLocation]
	assert.False(t, stored)
}

func TestRejectedInputChangesNothing(t *testing.T) {
	e := NewEngine()
	answers := Answers{FieldPhone: "1"}
	_, err := e.Handle(StepAchievements, answers, Answer(Text("ha")))
	require.Error(t, err)
	assert.True(t, IsRejected(err))

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeRejected, serr.Code())
	assert.Equal(t, StepAchievements, serr.Step)
	assert.Equal(t, Answers{FieldPhone: "1"}, answers)

	_, err = e.Handle(StepLivingType, answers, Answer(Pick("castle")))
	assert.True(t, IsRejected(err))
}

func TestHandleTerminalAndSearch(t *testing.T) {
	e := NewEngine()
	_, err := e.Handle(StepCompleted, nil, Answer(Text("x")))
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeTerminal, serr.Code())

	_, err = e.Handle(StepSearch, nil, Answer(Text("AB123")))
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeNeedsLookup, serr.Code())

	_, err = e.Handle(StepNone, nil, Back(StepNone))
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeUnknownStep, serr.Code())
}

func TestAdvanceOnlyReadsDeclaredFields(t *testing.T) {
	e := NewEngine()
	noisy := Answers{FieldLivingType: LivingRent, FieldIsWorking: YesValue, FieldHasGrant: YesValue}
	to, merge, err := e.Advance(StepMotherAlive, NoValue, noisy)
	require.NoError(t, err)
	assert.Equal(t, StepLivingType, to)
	assert.Equal(t, map[string]string{
		FieldMotherAlive:     NoValue,
		FieldMotherName:      "",
		FieldMotherPhone:     "",
		FieldParentsTogether: "",
	}, merge)
}
