package protocol

// Edit methods understood by the engine. Gestures take no params.
const (
	EditInsert  = "insert"
	EditFind    = "find"
	EditClick   = "click"
	EditDrag    = "drag"
	EditScroll  = "scroll"
	EditRequest = "request"

	MoveUp                    = "move_up"
	MoveDown                  = "move_down"
	MoveLeft                  = "move_left"
	MoveRight                 = "move_right"
	MoveWordLeft              = "move_word_left"
	MoveWordRight             = "move_word_right"
	MoveToLeftEndOfLine       = "move_to_left_end_of_line"
	MoveToRightEndOfLine      = "move_to_right_end_of_line"
	MoveToBeginningOfDocument = "move_to_beginning_of_document"
	MoveToEndOfDocument       = "move_to_end_of_document"

	MoveUpAndModifySelection               = "move_up_and_modify_selection"
	MoveDownAndModifySelection             = "move_down_and_modify_selection"
	MoveLeftAndModifySelection             = "move_left_and_modify_selection"
	MoveRightAndModifySelection            = "move_right_and_modify_selection"
	MoveToLeftEndOfLineAndModifySelection  = "move_to_left_end_of_line_and_modify_selection"
	MoveToRightEndOfLineAndModifySelection = "move_to_right_end_of_line_and_modify_selection"

	ScrollPageUp   = "scroll_page_up"
	ScrollPageDown = "scroll_page_down"

	InsertNewline = "insert_newline"
	InsertTab     = "insert_tab"

	DeleteBackward          = "delete_backward"
	DeleteForward           = "delete_forward"
	DeleteWordBackward      = "delete_word_backward"
	DeleteWordForward       = "delete_word_forward"
	DeleteToEndOfParagraph  = "delete_to_end_of_paragraph"
	DeleteToBeginningOfLine = "delete_to_beginning_of_line"

	SelectAll = "select_all"
	Undo      = "undo"
	Redo      = "redo"
)

// Click modifier flags as the engine expects them.
const (
	ClickModShift = 2
	ClickModCtrl  = 4
)
