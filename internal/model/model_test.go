package model

import (
	"testing"

	"social-system/pkg/store"
)

func TestDecodeFriendRequest(t *testing.T) {
	doc := store.Doc{ID: "r1", Data: store.Document{
		"from":   "alice",
		"to":     "bob",
		"status": "pending",
	}}
	r, err := DecodeFriendRequest(doc)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if r.ID != "r1" || r.From != "alice" || r.To != "bob" || r.Terminal() {
		t.Fatalf("解码结果不符: %+v", r)
	}

	// 状态枚举外的值拒绝解码
	bad := store.Doc{ID: "r2", Data: store.Document{
		"from": "alice", "to": "bob", "status": "cancelled",
	}}
	if _, err := DecodeFriendRequest(bad); err == nil {
		t.Fatalf("非法状态应解码失败")
	}

	// 缺少参与方拒绝解码
	missing := store.Doc{ID: "r3", Data: store.Document{
		"to": "bob", "status": "pending",
	}}
	if _, err := DecodeFriendRequest(missing); err == nil {
		t.Fatalf("缺少发起方应解码失败")
	}
}

func TestRequestTerminal(t *testing.T) {
	for status, terminal := range map[string]bool{
		RequestPending:  false,
		RequestAccepted: true,
		RequestRejected: true,
	} {
		r := &FriendRequest{Status: status}
		if r.Terminal() != terminal {
			t.Fatalf("状态 %s 的终态判断应为 %v", status, terminal)
		}
	}
}

func TestFriendshipID(t *testing.T) {
	if FriendshipID("bob", "alice") != "alice_bob" {
		t.Fatalf("好友关系ID应按字典序拼接，实际 %q", FriendshipID("bob", "alice"))
	}
	if FriendshipID("alice", "bob") != FriendshipID("bob", "alice") {
		t.Fatalf("好友关系ID应与参数顺序无关")
	}
}

func TestFriendshipOther(t *testing.T) {
	f := &Friendship{Members: []string{"alice", "bob"}}
	if f.Other("alice") != "bob" || f.Other("bob") != "alice" {
		t.Fatalf("Other 应返回对方成员")
	}
	if f.Other("carol") != "alice" {
		t.Fatalf("非成员查询返回首个不等于自身的成员，实际 %q", f.Other("carol"))
	}
}

func TestDecodeFriendshipMemberCount(t *testing.T) {
	bad := store.Doc{ID: "f1", Data: store.Document{
		"members": []interface{}{"alice"},
	}}
	if _, err := DecodeFriendship(bad); err == nil {
		t.Fatalf("成员数不为2应解码失败")
	}

	ok := store.Doc{ID: "alice_bob", Data: store.Document{
		"members": []interface{}{"alice", "bob"},
	}}
	f, err := DecodeFriendship(ok)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if f.ID != "alice_bob" || len(f.Members) != 2 {
		t.Fatalf("解码结果不符: %+v", f)
	}
}

func TestDecodeWallPostVisibility(t *testing.T) {
	base := store.Document{
		"author_id":   "alice",
		"author_name": "Alice",
		"content":     "你好",
	}

	for _, visibility := range []string{VisibilityPublic, VisibilityPrivate} {
		doc := store.Document{"visibility": visibility}
		for k, v := range base {
			doc[k] = v
		}
		if _, err := DecodeWallPost(store.Doc{ID: "p1", Data: doc}); err != nil {
			t.Fatalf("可见性 %s 应可解码: %v", visibility, err)
		}
	}

	doc := store.Document{"visibility": "friends-only"}
	for k, v := range base {
		doc[k] = v
	}
	if _, err := DecodeWallPost(store.Doc{ID: "p2", Data: doc}); err == nil {
		t.Fatalf("未知可见性应解码失败")
	}
}

func TestDecodeChatMessageRequiredFields(t *testing.T) {
	doc := store.Doc{ID: "m1", Data: store.Document{
		"channel_id":  "alice_bob",
		"sender_id":   "alice",
		"receiver_id": "bob",
		"message":     "在吗",
	}}
	m, err := DecodeChatMessage(doc)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if !m.Between("bob", "alice") {
		t.Fatalf("Between 应与参数顺序无关")
	}
	if m.Between("alice", "carol") {
		t.Fatalf("非参与方对不应匹配")
	}

	empty := store.Doc{ID: "m2", Data: store.Document{
		"channel_id":  "alice_bob",
		"sender_id":   "alice",
		"receiver_id": "bob",
		"message":     "",
	}}
	if _, err := DecodeChatMessage(empty); err == nil {
		t.Fatalf("空消息体应解码失败")
	}
}

func TestDecodeRatingScoreBounds(t *testing.T) {
	for _, score := range []int{MinScore, 3, MaxScore} {
		doc := store.Doc{ID: "r1", Data: store.Document{
			"rater_id": "alice", "target_id": "bob", "score": score,
		}}
		if _, err := DecodeRating(doc); err != nil {
			t.Fatalf("分值 %d 应可解码: %v", score, err)
		}
	}
	for _, score := range []int{0, 6, -1} {
		doc := store.Doc{ID: "r2", Data: store.Document{
			"rater_id": "alice", "target_id": "bob", "score": score,
		}}
		if _, err := DecodeRating(doc); err == nil {
			t.Fatalf("越界分值 %d 应解码失败", score)
		}
	}
}

func TestProfileDisplayName(t *testing.T) {
	p := &Profile{Name: "Alice", Email: "alice@example.com"}
	if p.DisplayName() != "Alice" {
		t.Fatalf("有名字时优先展示名字，实际 %q", p.DisplayName())
	}
	p.Name = ""
	if p.DisplayName() != "alice@example.com" {
		t.Fatalf("无名字时回退到邮箱，实际 %q", p.DisplayName())
	}
}

func TestDecodeProfileNested(t *testing.T) {
	doc := store.Doc{ID: "u1", Data: store.Document{
		"email": "alice@example.com",
		"name":  "Alice",
		"social_media": map[string]interface{}{
			"github": "alice-gh",
		},
		"is_public_wall": true,
	}}
	p, err := DecodeProfile(doc)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if p.SocialMedia.GitHub != "alice-gh" || !p.IsPublicWall {
		t.Fatalf("嵌套字段解码不符: %+v", p)
	}

	// 邮箱和名字都缺失时拒绝解码
	blank := store.Doc{ID: "u2", Data: store.Document{"bio": "空壳"}}
	if _, err := DecodeProfile(blank); err == nil {
		t.Fatalf("缺少身份字段应解码失败")
	}
}

func TestDecodeProfileWallDefault(t *testing.T) {
	// 缺失可见性字段的旧文档按公开处理
	missing := store.Doc{ID: "u1", Data: store.Document{"email": "a@example.com"}}
	p, err := DecodeProfile(missing)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if !p.IsPublicWall {
		t.Fatalf("缺失 is_public_wall 应默认公开")
	}

	// 显式关闭的文档保持关闭
	private := store.Doc{ID: "u2", Data: store.Document{
		"email": "b@example.com", "is_public_wall": false,
	}}
	p, err = DecodeProfile(private)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if p.IsPublicWall {
		t.Fatalf("显式 false 不应被默认值覆盖")
	}
}

func TestDecodeBrandSuggestionRequiredFields(t *testing.T) {
	bad := store.Doc{ID: "b1", Data: store.Document{
		"country": "DE", "category": "Food", "suggested_by": "alice",
	}}
	if _, err := DecodeBrandSuggestion(bad); err == nil {
		t.Fatalf("缺少品牌名应解码失败")
	}
}
