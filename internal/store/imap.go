package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/mailbrowse/internal/model"
)

// imapFolder is a folder node plus the mailbox backing it.
type imapFolder struct {
	Folder
	mailbox    string
	selectable bool
	loaded     bool
}

// imapMessage locates a message by mailbox and UID.
type imapMessage struct {
	mailbox string
	uid     imap.UID
}

// IMAPStore implements MessageStore over an IMAP account. One connection
// is kept for the lifetime of the store and every command goes through it.
type IMAPStore struct {
	mu       sync.Mutex
	client   *imapclient.Client
	selected string
	root     uint32
	folders  map[uint32]*imapFolder
	messages map[uint32]imapMessage
	nextDir  uint32
	nextMsg  uint32
}

// NewIMAPStore connects, authenticates and lists the account's mailboxes.
func NewIMAPStore(
	_ context.Context, cfg model.IMAPConfig, password string,
) (*IMAPStore, error) {
	port := cfg.Port
	if port == "" {
		port = "993"
	}
	addr := cfg.Host + ":" + port

	var client *imapclient.Client
	var err error

	if cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(cfg.Username, password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", cfg.Username, err)
	}

	mailboxes, err := client.List("", "*", nil).Collect()
	if err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("listing mailboxes: %w", err)
	}

	s := &IMAPStore{
		client:   client,
		folders:  make(map[uint32]*imapFolder),
		messages: make(map[uint32]imapMessage),
		nextDir:  1,
		nextMsg:  1,
	}
	s.root = s.buildTree(cfg.Username+"@"+cfg.Host, mailboxes)
	return s, nil
}

func (s *IMAPStore) addFolder(name, mailbox string, selectable bool) *imapFolder {
	id := s.nextDir
	s.nextDir++
	f := &imapFolder{
		Folder:     Folder{ID: id, Name: name},
		mailbox:    mailbox,
		selectable: selectable,
	}
	s.folders[id] = f
	return f
}

// buildTree arranges mailboxes under a synthetic account root using each
// mailbox's hierarchy delimiter. Missing parents become empty folders.
func (s *IMAPStore) buildTree(account string, mailboxes []*imap.ListData) uint32 {
	root := s.addFolder(account, "", false)

	sort.Slice(mailboxes, func(i, j int) bool {
		return mailboxes[i].Mailbox < mailboxes[j].Mailbox
	})

	byPath := map[string]*imapFolder{"": root}
	var ensure func(path string, delim rune) *imapFolder
	ensure = func(path string, delim rune) *imapFolder {
		if f, ok := byPath[path]; ok {
			return f
		}
		parentPath, name := "", path
		if delim != 0 {
			if i := strings.LastIndex(path, string(delim)); i >= 0 {
				parentPath, name = path[:i], path[i+1:]
			}
		}
		parent := ensure(parentPath, delim)
		f := s.addFolder(name, path, false)
		parent.Children = append(parent.Children, f.ID)
		byPath[path] = f
		return f
	}

	for _, mb := range mailboxes {
		f := ensure(mb.Mailbox, mb.Delim)
		f.selectable = true
		for _, attr := range mb.Attrs {
			if attr == imap.MailboxAttrNoSelect || attr == imap.MailboxAttrNonExistent {
				f.selectable = false
			}
		}
	}
	return root.ID
}

// selectMailbox makes mailbox the selected one. Callers hold s.mu.
func (s *IMAPStore) selectMailbox(mailbox string) error {
	if s.selected == mailbox {
		return nil
	}
	if _, err := s.client.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return fmt.Errorf("selecting %s: %w", mailbox, err)
	}
	s.selected = mailbox
	return nil
}

// RootFolderID returns the synthetic account root.
func (s *IMAPStore) RootFolderID() uint32 {
	return s.root
}

// OpenFolder searches the mailbox for all UIDs on first open.
func (s *IMAPStore) OpenFolder(_ context.Context, id uint32) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("opening folder %d: %w", id, ErrFolderNotFound)
	}

	if !f.loaded && f.selectable {
		if err := s.selectMailbox(f.mailbox); err != nil {
			return nil, err
		}
		searchData, err := s.client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", f.mailbox, err)
		}
		for _, uid := range searchData.AllUIDs() {
			msgID := s.nextMsg
			s.nextMsg++
			s.messages[msgID] = imapMessage{mailbox: f.mailbox, uid: uid}
			f.Contents = append(f.Contents, msgID)
		}
	}
	f.loaded = true

	cp := f.Folder
	cp.Contents = append([]uint32(nil), f.Contents...)
	cp.Children = append([]uint32(nil), f.Children...)
	return &cp, nil
}

// OpenMessage fetches the envelope only, unless a body property is
// requested, in which case the full message is fetched with BODY.PEEK[].
func (s *IMAPStore) OpenMessage(
	_ context.Context, id uint32, props []model.PropertyID,
) (model.PropertySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}
	if err := s.selectMailbox(loc.mailbox); err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	}
	withBody := needsBody(props)
	if withBody {
		fetchOpts.BodySection = []*imap.FetchItemBodySection{bodySection}
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(loc.uid), fetchOpts)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d in %s: %w", loc.uid, loc.mailbox, ErrMessageNotFound)
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("closing fetch: %w", err)
	}

	if withBody {
		if raw := buf.FindBodySection(bodySection); raw != nil {
			return ParseMessage(bytes.NewReader(raw), props)
		}
	}
	return envelopeProperties(buf.Envelope).Restrict(props), nil
}

// Close logs out and closes the connection.
func (s *IMAPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.Logout().Wait(); err != nil {
		_ = s.client.Close()
		return fmt.Errorf("logging out: %w", err)
	}
	return s.client.Close()
}

// envelopeProperties maps an IMAP envelope onto summary properties.
func envelopeProperties(env *imap.Envelope) model.PropertySet {
	set := model.PropertySet{
		model.PropMessageClass: model.StringValue(model.DefaultMessageClass),
	}
	if env == nil {
		return set
	}

	if env.Subject != "" {
		set[model.PropSubject] = model.StringValue(env.Subject)
	}
	if from := envelopeNames(env.From); from != "" {
		set[model.PropSenderName] = model.StringValue(from)
	}
	if to := envelopeNames(env.To); to != "" {
		set[model.PropDisplayTo] = model.StringValue(to)
	}
	if cc := envelopeNames(env.Cc); cc != "" {
		set[model.PropDisplayCc] = model.StringValue(cc)
	}
	if !env.Date.IsZero() {
		set[model.PropClientSubmitTime] = model.TimestampValue(env.Date.UTC())
	}
	return set
}

func envelopeNames(addrs []imap.Address) string {
	names := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			names = append(names, a.Name)
		} else {
			names = append(names, a.Addr())
		}
	}
	return strings.Join(names, "; ")
}
