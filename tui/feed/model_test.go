package feed

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/infra/config"
)

func TestStaleItemsLoadedIsIgnored(t *testing.T) {
	m := newTestModel(t, Deps{})

	m, _ = m.Update(ItemsLoadedMsg{Items: makeItems(3), QueryKey: m.currentQueryKey(), ReqSeq: m.reqSeq + 1})
	if len(m.Items()) != 0 || !m.Loading() {
		t.Fatalf("expected stale sequence to be ignored, got %d items", len(m.Items()))
	}

	m, _ = m.Update(ItemsLoadedMsg{Items: makeItems(3), QueryKey: "tag:other", ReqSeq: m.reqSeq})
	if len(m.Items()) != 0 {
		t.Fatalf("expected stale query key to be ignored, got %d items", len(m.Items()))
	}

	m = loaded(t, m, makeItems(3))
	if len(m.Items()) != 3 || m.Loading() {
		t.Fatalf("expected current response to land, got %d items loading=%v", len(m.Items()), m.Loading())
	}
	if i, ok := m.ActiveIndex(); !ok || i != 0 {
		t.Fatalf("expected active index 0, got %d ok=%v", i, ok)
	}
}

func TestArrowKeysClampAtBounds(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{}), makeItems(3))

	m, _ = m.Update(keyMsg("up"))
	if i, _ := m.ActiveIndex(); i != 0 {
		t.Fatalf("expected up at the top to stay at 0, got %d", i)
	}

	for range 5 {
		m, _ = m.Update(keyMsg("down"))
	}
	if i, _ := m.ActiveIndex(); i != 2 {
		t.Fatalf("expected down to clamp at 2, got %d", i)
	}

	_, cmd := m.Update(keyMsg("down"))
	if cmd != nil {
		t.Fatal("expected no command when down cannot move")
	}
}

func TestArrowKeysIgnoredWhileCommentInputFocused(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), makeItems(3))

	m, _ = m.Update(keyMsg("c"))
	if !m.InputFocused() {
		t.Fatal("expected comment input to take focus")
	}
	m, _ = m.Update(keyMsg("down"))
	if i, _ := m.ActiveIndex(); i != 0 {
		t.Fatalf("expected active index to stay at 0 while typing, got %d", i)
	}

	m, _ = m.Update(keyMsg("esc"))
	m, _ = m.Update(keyMsg("down"))
	if i, _ := m.ActiveIndex(); i != 1 {
		t.Fatalf("expected down to move after blurring the input, got %d", i)
	}
	if m.InOverlay() {
		t.Fatal("expected moving to close the comment drawer")
	}
}

func TestLikeRollsBackExactlyOnError(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{
		ViewerID:    testViewer,
		Interaction: stubInteraction{likeErr: errBoom},
	}), makeItems(2))

	m, cmd := m.Update(keyMsg("l"))
	if it := m.Items()[0]; !it.LikedByViewer || it.LikeCount != 6 {
		t.Fatalf("expected optimistic 6/true, got %d/%v", it.LikeCount, it.LikedByViewer)
	}
	if cmd == nil {
		t.Fatal("expected a remote toggle command")
	}

	m, _ = m.Update(cmd())
	if it := m.Items()[0]; it.LikedByViewer || it.LikeCount != 5 {
		t.Fatalf("expected rollback to 5/false, got %d/%v", it.LikeCount, it.LikedByViewer)
	}
	if m.Status() == "" {
		t.Fatal("expected the failure to be surfaced")
	}
}

func TestLikeConfirmTakesServerCount(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{
		ViewerID:    testViewer,
		Interaction: stubInteraction{like: domain.LikeState{Liked: true, Count: 42}},
	}), makeItems(2))

	m, cmd := m.Update(keyMsg("l"))
	m, _ = m.Update(cmd())
	if it := m.Items()[0]; !it.LikedByViewer || it.LikeCount != 42 {
		t.Fatalf("expected server state 42/true, got %d/%v", it.LikeCount, it.LikedByViewer)
	}
	if it := m.Items()[1]; it.LikeCount != 5 {
		t.Fatalf("expected other items untouched, got %d", it.LikeCount)
	}
}

func TestLikeRequiresViewer(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{}), makeItems(1))

	m, cmd := m.Update(keyMsg("l"))
	if cmd != nil {
		t.Fatal("expected no remote call for anonymous viewer")
	}
	if it := m.Items()[0]; it.LikedByViewer || it.LikeCount != 5 {
		t.Fatalf("expected item untouched, got %d/%v", it.LikeCount, it.LikedByViewer)
	}
	if m.Status() == "" {
		t.Fatal("expected a sign-in hint")
	}
}

func TestFollowUpdatesEveryItemByAuthor(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{
		ViewerID:    testViewer,
		Interaction: stubInteraction{following: true},
	}), makeItems(5))
	m.profiles["author-0"] = domain.Profile{ID: "author-0", Followers: 10}

	m, cmd := m.Update(keyMsg("f"))
	for _, it := range m.Items() {
		if want := it.AuthorID == "author-0"; it.FollowedByViewer != want {
			t.Fatalf("item %s: expected following=%v", it.ID, want)
		}
	}
	if got := m.profiles["author-0"].Followers; got != 11 {
		t.Fatalf("expected optimistic follower count 11, got %d", got)
	}

	m, _ = m.Update(cmd())
	if got := m.profiles["author-0"].Followers; got != 11 {
		t.Fatalf("expected confirmed follower count 11, got %d", got)
	}
	if !m.Items()[2].FollowedByViewer {
		t.Fatal("expected confirmed follow on item-2")
	}
}

func TestFollowRollsBackOnError(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{
		ViewerID:    testViewer,
		Interaction: stubInteraction{followErr: errBoom},
	}), makeItems(4))
	m.profiles["author-0"] = domain.Profile{ID: "author-0", Followers: 10}

	m, cmd := m.Update(keyMsg("f"))
	m, _ = m.Update(cmd())
	for _, it := range m.Items() {
		if it.FollowedByViewer {
			t.Fatalf("item %s: expected follow rolled back", it.ID)
		}
	}
	if got := m.profiles["author-0"].Followers; got != 10 {
		t.Fatalf("expected follower count restored to 10, got %d", got)
	}
}

func TestCommentStreamDeduplicates(t *testing.T) {
	items := makeItems(2)
	items[0].CommentCount = 3
	m := loaded(t, newTestModel(t, Deps{}), items)

	m, _ = m.Update(keyMsg("c"))
	sess, ok := m.stream.Current()
	if !ok || sess.ItemID != "item-0" {
		t.Fatalf("expected a session for item-0, got %+v ok=%v", sess, ok)
	}

	snapshot := []domain.CommentRecord{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}}
	m, _ = m.Update(commentsLoadedMsg{Session: sess, Comments: snapshot})

	m, _ = m.Update(commentInsertedMsg{Session: sess, CommentID: "B"})
	if got := len(m.stream.Items()); got != 3 {
		t.Fatalf("expected duplicate insert to be ignored, got %d comments", got)
	}

	m, _ = m.Update(commentInsertedMsg{Session: sess, CommentID: "D"})
	m, _ = m.Update(commentFetchedMsg{Session: sess, Comment: domain.CommentRecord{ID: "D", Text: "d"}})
	ids := commentIDs(m)
	if !slices.Equal(ids, []string{"A", "B", "C", "D"}) {
		t.Fatalf("expected A,B,C,D got %v", ids)
	}
	if got := m.Items()[0].CommentCount; got != 4 {
		t.Fatalf("expected comment count 4, got %d", got)
	}

	m, _ = m.Update(commentInsertedMsg{Session: sess, CommentID: "E"})
	m, _ = m.Update(commentFetchedMsg{Session: sess, Err: errBoom})
	if got := len(m.stream.Items()); got != 4 {
		t.Fatalf("expected failed fetch to leave list unchanged, got %d", got)
	}
	if got := m.Items()[0].CommentCount; got != 4 {
		t.Fatalf("expected comment count to stay 4, got %d", got)
	}
}

func TestCommentFromClosedSessionIsIgnored(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{}), makeItems(2))

	m, _ = m.Update(keyMsg("c"))
	old, _ := m.stream.Current()
	m, _ = m.Update(keyMsg("esc"))
	m, _ = m.Update(keyMsg("c"))

	m, _ = m.Update(commentsLoadedMsg{Session: old, Comments: []domain.CommentRecord{{ID: "A"}}})
	if got := len(m.stream.Items()); got != 0 {
		t.Fatalf("expected results for a closed session to be dropped, got %d", got)
	}
}

func TestSendCommentRollsBackOnError(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{
		ViewerID: testViewer,
		Comments: stubComments{createErr: errBoom},
	}), makeItems(1))

	m, _ = m.Update(keyMsg("c"))
	m = typeText(m, "nice clip")
	m, cmd := m.Update(keyMsg("enter"))
	if got := m.Items()[0].CommentCount; got != 1 {
		t.Fatalf("expected optimistic count 1, got %d", got)
	}
	if got := len(m.stream.Items()); got != 1 {
		t.Fatalf("expected local comment shown, got %d", got)
	}

	m, _ = m.Update(cmd())
	if got := m.Items()[0].CommentCount; got != 0 {
		t.Fatalf("expected count rolled back to 0, got %d", got)
	}
	if got := len(m.stream.Items()); got != 0 {
		t.Fatalf("expected local comment removed, got %d", got)
	}
}

func TestSendCommentConfirms(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), makeItems(1))

	m, _ = m.Update(keyMsg("c"))
	m = typeText(m, "  first  ")
	m, cmd := m.Update(keyMsg("enter"))
	m, _ = m.Update(cmd())

	list := m.stream.Items()
	if len(list) != 1 || list[0].Text != "first" || list[0].AuthorName != "me" {
		t.Fatalf("expected stored comment to replace the local one, got %+v", list)
	}
	if got := m.Items()[0].CommentCount; got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}
}

func TestEmptyCommentIsRejected(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), makeItems(1))

	m, _ = m.Update(keyMsg("c"))
	m = typeText(m, "   ")
	m, cmd := m.Update(keyMsg("enter"))
	if cmd != nil {
		t.Fatal("expected no remote call for blank comment")
	}
	if len(m.stream.Items()) != 0 || m.Items()[0].CommentCount != 0 {
		t.Fatal("expected nothing to be added")
	}
}

func TestVolumeAndMutePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	muted, vol := false, 10
	m := loaded(t, newTestModel(t, Deps{
		StatePath: path,
		State:     config.UIState{Muted: &muted, Volume: &vol},
	}), makeItems(1))

	m, cmd := m.Update(keyMsg("-"))
	if a := m.Audio(); a.Volume != 0 || !a.Muted {
		t.Fatalf("expected volume 0 to force muted, got %+v", a)
	}
	m, _ = m.Update(cmd())

	st, err := config.LoadUIState(path)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if a := st.Audio(); a.Volume != 0 || !a.Muted {
		t.Fatalf("expected persisted muted/0, got %+v", a)
	}

	m, cmd = m.Update(keyMsg("+"))
	if a := m.Audio(); a.Volume != 10 || a.Muted {
		t.Fatalf("expected volume up to unmute at 10, got %+v", a)
	}
	m, _ = m.Update(cmd())

	m, cmd = m.Update(keyMsg("m"))
	if a := m.Audio(); !a.Muted || a.Volume != 10 {
		t.Fatalf("expected mute to keep the volume, got %+v", a)
	}
	_, _ = m.Update(cmd())

	st, err = config.LoadUIState(path)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if a := st.Audio(); !a.Muted || a.Volume != 10 {
		t.Fatalf("expected persisted muted/10, got %+v", a)
	}
}

func TestWheelMovesActiveByVisibility(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{}), makeItems(3))
	if got := m.pageHeight(); got != 20 {
		t.Fatalf("expected page height 20, got %d", got)
	}

	wheelDown := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}
	for range 3 {
		m, _ = m.Update(wheelDown)
	}
	if i, _ := m.ActiveIndex(); i != 0 {
		t.Fatalf("expected item 0 to stay active at offset 9, got %d", i)
	}

	m, _ = m.Update(wheelDown)
	if m.offsetLines() != 12 {
		t.Fatalf("expected offset 12, got %d", m.offsetLines())
	}
	if i, _ := m.ActiveIndex(); i != 1 {
		t.Fatalf("expected item 1 to become active at 60%% visibility, got %d", i)
	}
}

func TestWheelSnapsToNearestPage(t *testing.T) {
	immediateTicks(t)
	m := loaded(t, newTestModel(t, Deps{}), makeItems(3))

	wheelDown := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}
	var cmd tea.Cmd
	for range 4 {
		m, cmd = m.Update(wheelDown)
	}
	m = drain(t, m, cmd)

	if m.offsetLines() != 20 {
		t.Fatalf("expected snap to offset 20, got %d", m.offsetLines())
	}
	if i, _ := m.ActiveIndex(); i != 1 {
		t.Fatalf("expected item 1 active after snap, got %d", i)
	}
}

func TestNavigationDrivesPlayback(t *testing.T) {
	immediateTicks(t)
	opener := newRecordingOpener()
	m := newTestModel(t, Deps{Opener: opener})

	m, cmd := m.Update(ItemsLoadedMsg{Items: makeItems(5), QueryKey: m.currentQueryKey(), ReqSeq: m.reqSeq})
	m = drain(t, m, cmd)
	for range 3 {
		m, cmd = m.Update(keyMsg("down"))
		m = drain(t, m, cmd)
	}

	if i, _ := m.ActiveIndex(); i != 3 {
		t.Fatalf("expected active index 3, got %d", i)
	}
	if got := m.coord.Playing(); !slices.Equal(got, []string{"item-3"}) {
		t.Fatalf("expected only item-3 playing, got %v", got)
	}

	active := opener.surface("item-3")
	if active == nil {
		t.Fatal("expected a surface for item-3")
	}
	waitUntil(t, "item-3 to play", func() bool {
		return slices.Contains(active.commands(), "playVideo")
	})
	cmds := active.commands()
	if !slices.Contains(cmds, "mute") {
		t.Fatalf("expected muted playback, got %v", cmds)
	}
	if slices.Contains(cmds, "unMute") {
		t.Fatalf("expected no unMute while the preference is muted, got %v", cmds)
	}

	first := opener.surface("item-0")
	if first == nil {
		t.Fatal("expected a surface for item-0")
	}
	waitUntil(t, "item-0 to pause", func() bool {
		return slices.Contains(first.commands(), "pauseVideo")
	})
}

func TestFailedSurfaceIsRetried(t *testing.T) {
	immediateTicks(t)
	opener := newRecordingOpener()
	opener.failures["item-0"] = 2
	m := newTestModel(t, Deps{Opener: opener})

	m, cmd := m.Update(ItemsLoadedMsg{Items: makeItems(3), QueryKey: m.currentQueryKey(), ReqSeq: m.reqSeq})
	m = drain(t, m, cmd)

	if n := opener.openCount("item-0"); n != 3 {
		t.Fatalf("expected two failed opens and one success, got %d opens", n)
	}
	if opener.openCount("item-1") != 1 {
		t.Fatalf("expected item-1 to open once, got %d", opener.openCount("item-1"))
	}
	s := opener.surface("item-0")
	if s == nil {
		t.Fatal("expected item-0 to get a surface after retrying")
	}
	waitUntil(t, "item-0 to play", func() bool {
		return slices.Contains(s.commands(), "playVideo")
	})
}

func TestModerationRemovesItemsAndKeepsActive(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), makeItems(5))
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))

	m, _ = m.Update(ModerationResultMsg{Kind: moderationBlock, AuthorID: "author-1", Username: "user1"})
	ids := itemIDs(m)
	if !slices.Equal(ids, []string{"item-0", "item-2", "item-4"}) {
		t.Fatalf("expected author-1 items removed, got %v", ids)
	}
	if it, ok := m.ActiveItem(); !ok || it.ID != "item-2" {
		t.Fatalf("expected item-2 to stay active, got %+v", it)
	}

	m, _ = m.Update(ModerationResultMsg{Kind: moderationNotInterested, ItemID: "item-2"})
	if it, ok := m.ActiveItem(); !ok || it.ID != "item-4" {
		t.Fatalf("expected the next item to become active, got %+v", it)
	}
	if got := len(m.Items()); got != 2 {
		t.Fatalf("expected 2 items left, got %d", got)
	}
}

func TestModerationFailureKeepsItems(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), makeItems(2))

	m, _ = m.Update(ModerationResultMsg{Kind: moderationNotInterested, ItemID: "item-0", Err: errBoom})
	if got := len(m.Items()); got != 2 {
		t.Fatalf("expected items kept on failure, got %d", got)
	}
	if m.Status() == "" {
		t.Fatal("expected the failure to be surfaced")
	}
}

func TestBlockSelfIsRejected(t *testing.T) {
	items := makeItems(1)
	items[0].AuthorID = testViewer
	m := loaded(t, newTestModel(t, Deps{ViewerID: testViewer}), items)

	m, _ = m.Update(keyMsg("B"))
	if m.InOverlay() {
		t.Fatal("expected no block confirmation for own clip")
	}
}

func TestTagPromptSwitchesMode(t *testing.T) {
	m := loaded(t, newTestModel(t, Deps{}), makeItems(1))

	m, _ = m.Update(keyMsg("t"))
	if !m.InputFocused() {
		t.Fatal("expected tag prompt to focus")
	}
	m = typeText(m, "#Cats")
	m, cmd := m.Update(keyMsg("enter"))
	m, _ = m.Update(cmd())

	q := m.Query()
	if q.Mode != domain.ModeTag || q.Tag != "cats" {
		t.Fatalf("expected tag mode for cats, got %+v", q)
	}
	if !m.Loading() {
		t.Fatal("expected a reload")
	}
}

func TestFollowingModeAnonymousIsEmpty(t *testing.T) {
	m := newTestModel(t, Deps{
		Feed:  stubFeed{items: makeItems(2)},
		State: config.UIState{Mode: string(domain.ModeFollowing)},
	})

	m, _ = m.Update(m.fetchItems(m.reqSeq)())
	if len(m.Items()) != 0 {
		t.Fatalf("expected no items for anonymous following feed, got %d", len(m.Items()))
	}
	if !strings.Contains(m.View(), "Sign in to see clips from people you follow.") {
		t.Fatal("expected the sign-in hint")
	}
}

func TestViewStates(t *testing.T) {
	m := newTestModel(t, Deps{})
	if !strings.Contains(m.View(), "Loading clips") {
		t.Fatal("expected loading state")
	}

	m = loaded(t, m, nil)
	if !strings.Contains(m.View(), "No clips yet") {
		t.Fatal("expected empty state")
	}

	m = loaded(t, m, makeItems(2))
	view := m.View()
	if !strings.Contains(view, "@user0") || !strings.Contains(view, "1/2") {
		t.Fatalf("expected the first card and position, got:\n%s", view)
	}
}

func TestSinglePostNotFound(t *testing.T) {
	m := newTestModel(t, Deps{Feed: stubFeed{items: makeItems(2)}, PostID: "missing"})

	m, _ = m.Update(m.fetchItems(m.reqSeq)())
	if !strings.Contains(m.View(), "Post not found.") {
		t.Fatal("expected post not found")
	}

	m = newTestModel(t, Deps{Feed: stubFeed{items: makeItems(2)}, PostID: "item-1"})
	m, _ = m.Update(m.fetchItems(m.reqSeq)())
	if it, ok := m.ActiveItem(); !ok || it.ID != "item-1" {
		t.Fatalf("expected item-1, got %+v", it)
	}
}

func TestFetchErrorShowsRetry(t *testing.T) {
	m := newTestModel(t, Deps{Feed: stubFeed{err: errBoom}})

	m, _ = m.Update(m.fetchItems(m.reqSeq)())
	if m.Err() == nil {
		t.Fatal("expected a fetch error")
	}
	if !strings.Contains(m.View(), "Press r to retry.") {
		t.Fatal("expected a retry hint")
	}
}

func itemIDs(m Model) []string {
	out := make([]string, 0, len(m.Items()))
	for _, it := range m.Items() {
		out = append(out, it.ID)
	}
	return out
}

func commentIDs(m Model) []string {
	out := make([]string, 0, len(m.stream.Items()))
	for _, c := range m.stream.Items() {
		out = append(out, c.ID)
	}
	return out
}
